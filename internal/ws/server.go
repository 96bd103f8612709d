package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"presenceboard/internal/auth"
	"presenceboard/internal/customization"
	"presenceboard/internal/events"
	"presenceboard/internal/render"
)

const renderTimeout = 4 * time.Second

// renderJob builds one fragment for one connection. An empty fragment
// with a nil error means "nothing to push for this event".
type renderJob func() (string, error)

// Server accepts dashboard connections and keeps each one's view
// eventually consistent: for every announced transition it re-renders the
// affected slice of state (one room, the hub panel, or one customization)
// and pushes the fragment to every open connection.
//
// Bus listeners never build or render anything themselves; they enqueue a
// render job onto the connection's own render goroutine. Bus dispatch
// therefore returns immediately, and a stalled note lookup or slow
// template on one connection cannot delay delivery to any other.
//
// A connection's lifecycle is Connecting -> Subscribed -> Closed, with no
// way back; a reconnecting browser gets a brand-new subscription.
type Server struct {
	bus            *events.Bus
	builder        *render.Builder
	renderer       render.Renderer
	customizations *customization.Store
	upgrader       websocket.Upgrader
}

func NewServer(bus *events.Bus, builder *render.Builder, renderer render.Renderer, customizations *customization.Store) *Server {
	return &Server{
		bus:            bus,
		builder:        builder,
		renderer:       renderer,
		customizations: customizations,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handle is the gin entry point. Authorization has already happened; the
// routing layer only passes authenticated requests here.
func (s *Server) Handle(ginCtx *gin.Context) {
	ident := auth.IdentityFrom(ginCtx)
	if !ident.Authenticated {
		ginCtx.AbortWithStatus(http.StatusForbidden)
		return
	}

	raw, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws upgrade failed", zap.Error(err))
		return
	}

	conn := newClientConn(raw)
	jobs := make(chan renderJob, sendQueueSize)
	cancels := s.subscribe(conn, jobs, ident)

	go conn.writePump()
	go s.renderPump(conn, jobs)
	go s.reader(conn, cancels)
}

// subscribe registers this connection's three listeners. Each only wraps
// the event in a render job and hands it off; the actual store reads,
// note lookup and template execution happen on the render pump.
func (s *Server) subscribe(conn *clientConn, jobs chan renderJob, ident auth.Identity) []events.CancelFunc {
	roomCancel := s.bus.SubscribeRoom(func(ev events.RoomChanged) {
		schedule(conn, jobs, func() (string, error) {
			ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
			defer cancel()
			view, ok := s.builder.RoomByName(ctx, ev.Room)
			if !ok {
				return "", nil
			}
			return s.renderer.Room(view)
		})
	})

	hubCancel := s.bus.SubscribeHub(func(events.HubChanged) {
		schedule(conn, jobs, func() (string, error) {
			return s.renderer.Hub(s.builder.Hub(ident.PersonName))
		})
	})

	customizationCancel := s.bus.SubscribeCustomization(func(ev events.CustomizationChanged) {
		schedule(conn, jobs, func() (string, error) {
			c, ok := s.customizations.Get(ev.UserID)
			if !ok {
				return "", nil
			}
			return s.renderer.Customization(s.builder.Customization(c, ident.UserID, ev.IsNew))
		})
	})

	return []events.CancelFunc{roomCancel, hubCancel, customizationCancel}
}

// schedule hands a job to the render pump without blocking. A connection
// whose job queue is full misses this update and catches up on the next
// fragment it does receive (every push is a full snapshot of its slice).
func schedule(conn *clientConn, jobs chan renderJob, job renderJob) {
	select {
	case jobs <- job:
	case <-conn.done:
	default:
		zap.L().Debug("ws render queue full, dropping update")
	}
}

// renderPump serializes this connection's fragment building. Jobs run in
// arrival order so a connection never sees an older room state overwrite
// a newer one.
func (s *Server) renderPump(conn *clientConn, jobs chan renderJob) {
	for {
		select {
		case <-conn.done:
			return
		case job := <-jobs:
			fragment, err := job()
			if err != nil {
				zap.L().Warn("fragment render failed", zap.Error(err))
				continue
			}
			if fragment == "" {
				continue
			}
			conn.enqueue([]byte(fragment))
		}
	}
}

// reader drains (and discards) inbound frames purely to detect close.
// Teardown runs on every exit path: normal close, protocol error or a
// write failure that closed the connection underneath us. Listener
// deregistration is synchronous, so once a close is observed no further
// pushes can reach this connection.
func (s *Server) reader(conn *clientConn, cancels []events.CancelFunc) {
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
		conn.close()
	}()

	_ = conn.raw.SetReadDeadline(time.Now().Add(pongWait))
	conn.raw.SetPongHandler(func(string) error {
		return conn.raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.raw.ReadMessage(); err != nil {
			return
		}
	}
}
