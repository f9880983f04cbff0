package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"table-order-kiosk/internal/logger"
	"table-order-kiosk/internal/middleware"
	"table-order-kiosk/internal/tracking"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Watcher is the live order feed; *services.Diner satisfies it.
type Watcher interface {
	WatchOrders(ctx context.Context, fn func([]tracking.View)) ([]tracking.View, func(), error)
}

// Server streams order tracking snapshots to kiosk screens.
type Server struct {
	Orders Watcher
	Logger *zap.Logger
}

func New(orders Watcher, log *zap.Logger) *Server {
	return &Server{Orders: orders, Logger: logger.OrNop(log)}
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(value)
}

type stateMessage struct {
	Type      string          `json:"type"`
	SessionID int64           `json:"sessionId,omitempty"`
	Orders    []tracking.View `json:"orders"`
}

// TrackingWS sends an orders.state message with the full list on connect
// and after every tick or kitchen update.
func (s *Server) TrackingWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sessionID := middleware.SessionIDFrom(ctx)
	client := &wsClient{conn: conn}
	send := func(views []tracking.View) {
		if views == nil {
			views = []tracking.View{}
		}
		if err := client.writeJSON(stateMessage{Type: "orders.state", SessionID: sessionID, Orders: views}); err != nil {
			s.Logger.Debug("tracking write failed", zap.Int64("session_id", sessionID), zap.Error(err))
		}
	}

	views, release, err := s.Orders.WatchOrders(ctx, send)
	if err != nil {
		_ = client.writeJSON(map[string]any{"type": "error", "message": err.Error()})
		return
	}
	defer release()
	send(views)

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	select {
	case <-clientClosed:
	case <-ctx.Done():
	}
}
