package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/realtime"
	"table-order-kiosk/internal/tracking"

	"github.com/gorilla/websocket"
)

type wireFrame struct {
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	ID    *uint64         `json:"id,omitempty"`
	Ack   *uint64         `json:"ack,omitempty"`
}

// kitchen is a realtime server that acks requests with canned bodies.
type kitchen struct {
	srv     *httptest.Server
	events  chan string
	replies map[string]any

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func newKitchen(t *testing.T, replies map[string]any) *kitchen {
	t.Helper()
	k := &kitchen{events: make(chan string, 64), replies: replies}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	k.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		k.mu.Lock()
		k.conn = conn
		k.mu.Unlock()
		for {
			var f wireFrame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			k.events <- f.Event
			body, ok := k.replies[f.Event]
			if f.ID == nil || !ok {
				continue
			}
			data, _ := json.Marshal(body)
			k.writeMu.Lock()
			_ = conn.WriteJSON(wireFrame{Ack: f.ID, Data: data})
			k.writeMu.Unlock()
		}
	}))
	t.Cleanup(k.srv.Close)
	return k
}

func (k *kitchen) push(t *testing.T, event string, body any) {
	t.Helper()
	k.mu.Lock()
	conn := k.conn
	k.mu.Unlock()
	if conn == nil {
		t.Fatalf("no realtime client connected")
	}
	data, _ := json.Marshal(body)
	k.writeMu.Lock()
	defer k.writeMu.Unlock()
	if err := conn.WriteJSON(wireFrame{Event: event, Data: data}); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func (k *kitchen) waitEvent(t *testing.T, event string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-k.events:
			if got == event {
				return
			}
		case <-deadline:
			t.Fatalf("kitchen never saw %s", event)
		}
	}
}

func withRealtime(t *testing.T, fx *fixture, k *kitchen, ackTimeout time.Duration) {
	t.Helper()
	m := realtime.NewManager(realtime.Options{
		URL:               "ws" + strings.TrimPrefix(k.srv.URL, "http"),
		AckTimeout:        ackTimeout,
		ReconnectAttempts: 1,
		ReconnectDelay:    10 * time.Millisecond,
	})
	t.Cleanup(func() { _ = m.Disconnect() })
	fx.diner.rt = m
}

func TestSubmitOrderOverRealtime(t *testing.T) {
	k := newKitchen(t, map[string]any{
		realtime.EventCreateOrder: map[string]any{
			"success": true,
			"data":    map[string]any{"order": map[string]any{"id": 777, "sessionId": 9, "status": "new"}},
		},
	})
	fx := newFixture(t)
	withRealtime(t, fx, k, time.Second)
	fx.startSession(t)
	ctx := context.Background()

	if _, err := fx.diner.AddToCart(ctx, AddToCartInput{ItemID: 1, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	order, err := fx.diner.SubmitOrder(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.ID != 777 {
		t.Fatalf("expected realtime order 777, got %d", order.ID)
	}
	if len(fx.backend.created) != 0 {
		t.Fatalf("expected no http submission, got %d", len(fx.backend.created))
	}
	if !fx.diner.Cart().Empty() {
		t.Fatalf("expected cart cleared")
	}
}

func TestRealtimeTimeoutIsNotResentOverHTTP(t *testing.T) {
	k := newKitchen(t, map[string]any{})
	fx := newFixture(t)
	withRealtime(t, fx, k, 50*time.Millisecond)
	fx.startSession(t)
	ctx := context.Background()

	if _, err := fx.diner.AddToCart(ctx, AddToCartInput{ItemID: 2, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := fx.diner.SubmitOrder(ctx)
	if !errors.Is(err, realtime.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if len(fx.backend.created) != 0 {
		t.Fatalf("expected no http fallback after timeout")
	}
	if fx.diner.Cart().Count() != 1 {
		t.Fatalf("expected cart kept")
	}
}

func TestWatchOrders(t *testing.T) {
	k := newKitchen(t, map[string]any{
		realtime.EventGetCustomerOrders: map[string]any{
			"success": true,
			"data": map[string]any{"orders": []map[string]any{
				{"id": 41, "sessionId": 9, "status": "new", "preparationTime": 480},
			}},
		},
	})
	fx := newFixture(t)
	withRealtime(t, fx, k, time.Second)
	fx.startSession(t)

	updates := make(chan []tracking.View, 16)
	views, release, err := fx.diner.WatchOrders(context.Background(), func(v []tracking.View) {
		updates <- v
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if len(views) != 1 || views[0].Order.ID != 41 || !views[0].ShowTimer {
		t.Fatalf("unexpected snapshot %+v", views)
	}
	k.waitEvent(t, realtime.EventJoinSession)

	k.push(t, realtime.EventOrderStatusUpdated, map[string]any{"order": map[string]any{"id": 41, "status": "delivered"}})
	deadline := time.After(2 * time.Second)
	for delivered := false; !delivered; {
		select {
		case v := <-updates:
			delivered = len(v) == 1 && v[0].Order.Status == model.OrderDelivered
		case <-deadline:
			t.Fatalf("status update never reached the watcher")
		}
	}

	release()
	release()
	k.waitEvent(t, realtime.EventLeaveSession)
}
