package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/tracking"

	"github.com/gorilla/websocket"
)

type fakeWatcher struct {
	mu       sync.Mutex
	fn       func([]tracking.View)
	err      error
	released chan struct{}
}

func (f *fakeWatcher) WatchOrders(_ context.Context, fn func([]tracking.View)) ([]tracking.View, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	initial := []tracking.View{{Order: model.Order{ID: 1, Status: model.OrderNew}, Countdown: "8:00"}}
	return initial, func() { close(f.released) }, nil
}

func (f *fakeWatcher) push(views []tracking.View) bool {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(views)
	return true
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) stateMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg stateMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestTrackingStreamsSnapshots(t *testing.T) {
	watcher := &fakeWatcher{released: make(chan struct{})}
	s := New(watcher, nil)
	srv := httptest.NewServer(http.HandlerFunc(s.TrackingWS))
	defer srv.Close()

	conn := dial(t, srv)
	first := readState(t, conn)
	if first.Type != "orders.state" || len(first.Orders) != 1 || first.Orders[0].Countdown != "8:00" {
		t.Fatalf("unexpected initial message %+v", first)
	}

	if !watcher.push([]tracking.View{{Order: model.Order{ID: 1, Status: model.OrderNew}, Countdown: "7:59"}}) {
		t.Fatalf("watch callback not registered")
	}
	next := readState(t, conn)
	if next.Orders[0].Countdown != "7:59" {
		t.Fatalf("expected tick update, got %+v", next)
	}

	_ = conn.Close()
	select {
	case <-watcher.released:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected watch released after disconnect")
	}
}

func TestTrackingReportsWatchError(t *testing.T) {
	watcher := &fakeWatcher{err: errors.New("live order tracking is not configured")}
	srv := httptest.NewServer(http.HandlerFunc(New(watcher, nil).TrackingWS))
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg["type"] != "error" {
		t.Fatalf("expected error message, got %v", msg)
	}
}
