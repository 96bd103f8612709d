package actioncable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// reconnectDelay is how long we wait after a dropped or rejected
// connection before dialing again. The upstream is expected to drop
// periodically; reconnecting forever is the normal mode of operation.
const reconnectDelay = 10 * time.Second

// Handler receives connection lifecycle signals and channel broadcasts.
type Handler interface {
	// Connected fires once per (re)connection, after the subscription is
	// confirmed.
	Connected()
	// Disconnected fires when the connection drops; a reconnect is
	// already scheduled when it is called.
	Disconnected(err error)
	// Received fires for every broadcast on the subscribed channel.
	Received(message json.RawMessage)
}

// Client maintains a subscription to one ActionCable channel over a
// websocket, reconnecting indefinitely. It never returns an error to the
// caller; all anomalies are logged and absorbed.
type Client struct {
	url        string
	origin     string
	identifier string
	handler    Handler
}

// frame is the ActionCable wire envelope, both directions.
type frame struct {
	Type       string          `json:"type,omitempty"`
	Command    string          `json:"command,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Message    json.RawMessage `json:"message,omitempty"`
}

func NewClient(url, origin, channel string, handler Handler) *Client {
	identifier, _ := json.Marshal(map[string]string{"channel": channel})
	return &Client{
		url:        url,
		origin:     origin,
		identifier: string(identifier),
		handler:    handler,
	}
}

// Run dials and serves the subscription until ctx is done.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.serveOnce(ctx); err != nil {
			zap.L().Warn("actioncable connection lost", zap.Error(err))
			c.handler.Disconnected(err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) serveOnce(ctx context.Context) error {
	header := http.Header{}
	if c.origin != "" {
		header.Set("Origin", c.origin)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Tear the read loop down when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		switch f.Type {
		case "welcome":
			sub := frame{Command: "subscribe", Identifier: c.identifier}
			if err := conn.WriteJSON(sub); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
		case "confirm_subscription":
			zap.L().Info("actioncable subscription confirmed",
				zap.String("identifier", f.Identifier))
			c.handler.Connected()
		case "reject_subscription":
			return fmt.Errorf("subscription rejected for %s", f.Identifier)
		case "ping":
			// Cable-level keepalive, not channel traffic.
		case "disconnect":
			return fmt.Errorf("server requested disconnect")
		default:
			if len(f.Message) > 0 {
				c.handler.Received(f.Message)
			}
		}
	}
}
