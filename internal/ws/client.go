package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second

	// heartbeatPeriod spaces the inert keepalive pings that defeat
	// intermediary idle timeouts. Pings are control frames; no listener
	// ever sees them as a state change.
	heartbeatPeriod = 30 * time.Second
	pongWait        = heartbeatPeriod + writeWait

	sendQueueSize = 32
)

// clientConn wraps one browser connection. Pushes go through a buffered
// queue drained by writePump, so a slow client never blocks the bus
// dispatch or any other connection.
type clientConn struct {
	raw  *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClientConn(raw *websocket.Conn) *clientConn {
	return &clientConn{
		raw:  raw,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// enqueue hands a payload to the write pump without blocking. If the
// queue is full the client is too far behind to care about this update;
// it is dropped and the client will pick up current state on its next
// received fragment (delivery is best-effort, at-least-once overall).
func (c *clientConn) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		zap.L().Debug("ws send queue full, dropping update")
	}
}

func (c *clientConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.raw.Close()
	})
}

// writePump owns all writes on the connection: queued fragments plus the
// heartbeat. Any write error closes the connection, which unblocks the
// read loop and triggers the subscription teardown there.
func (c *clientConn) writePump() {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.raw.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.raw.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
