package realtime

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

	"github.com/gorilla/websocket"
)

type fakeServer struct {
	srv    *httptest.Server
	frames chan frame

	mu      sync.Mutex
	writeMu sync.Mutex
	conns   []*websocket.Conn
	// reply returns the ack body for a request frame, or false to stay silent.
	reply func(f frame) (any, bool)
}

func newFakeServer(t *testing.T, reply func(f frame) (any, bool)) *fakeServer {
	t.Helper()
	fs := &fakeServer{frames: make(chan frame, 64), reply: reply}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.mu.Lock()
		fs.conns = append(fs.conns, conn)
		fs.mu.Unlock()
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			fs.frames <- f
			fs.mu.Lock()
			reply := fs.reply
			fs.mu.Unlock()
			if f.ID == nil || reply == nil {
				continue
			}
			body, ok := reply(f)
			if !ok {
				continue
			}
			data, _ := json.Marshal(body)
			fs.writeMu.Lock()
			_ = conn.WriteJSON(frame{Ack: f.ID, Data: data})
			fs.writeMu.Unlock()
		}
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) setReply(reply func(f frame) (any, bool)) {
	fs.mu.Lock()
	fs.reply = reply
	fs.mu.Unlock()
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http")
}

func (fs *fakeServer) push(t *testing.T, event string, body any) {
	t.Helper()
	data, _ := json.Marshal(body)
	conn := fs.lastConn(t)
	fs.writeMu.Lock()
	defer fs.writeMu.Unlock()
	if err := conn.WriteJSON(frame{Event: event, Data: data}); err != nil {
		t.Fatalf("push %s: %v", event, err)
	}
}

// lastConn waits for the server side of the newest connection.
func (fs *fakeServer) lastConn(t *testing.T) *websocket.Conn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		fs.mu.Lock()
		n := len(fs.conns)
		var conn *websocket.Conn
		if n > 0 {
			conn = fs.conns[n-1]
		}
		fs.mu.Unlock()
		if conn != nil {
			return conn
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("server saw no connection")
	return nil
}

func (fs *fakeServer) kick() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, c := range fs.conns {
		_ = c.Close()
	}
}

func (fs *fakeServer) connCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.conns)
}

func (fs *fakeServer) waitFrame(t *testing.T, event string) frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-fs.frames:
			if f.Event == event {
				return f
			}
		case <-deadline:
			t.Fatalf("no %s frame received", event)
		}
	}
}

func testOptions(url string) Options {
	return Options{
		URL:               url,
		ReconnectAttempts: 5,
		ReconnectDelay:    10 * time.Millisecond,
		AckTimeout:        time.Second,
	}
}

func dialTest(t *testing.T, opts Options) *Conn {
	t.Helper()
	conn, err := Dial(context.Background(), opts)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestManagerConnectIsIdempotent(t *testing.T) {
	fs := newFakeServer(t, nil)
	m := NewManager(testOptions(fs.url()))
	defer m.Disconnect()

	if m.Connection() != nil {
		t.Fatalf("expected no connection before connect")
	}
	first, err := m.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	second, err := m.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same connection on repeated connect")
	}
	if m.Connection() != first {
		t.Fatalf("expected accessor to return the live connection")
	}

	if err := m.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if m.Connection() != nil {
		t.Fatalf("expected no connection after disconnect")
	}
	third, err := m.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if third == first {
		t.Fatalf("expected a fresh connection after disconnect")
	}
}

func TestConnectFailureIsReturned(t *testing.T) {
	m := NewManager(testOptions("ws://127.0.0.1:1/ws"))
	if _, err := m.Connect(context.Background()); err == nil {
		t.Fatalf("expected dial error")
	}
	if m.Connection() != nil {
		t.Fatalf("expected no connection after failed connect")
	}
}

func TestCreateOrderAck(t *testing.T) {
	fs := newFakeServer(t, func(f frame) (any, bool) {
		return map[string]any{
			"success": true,
			"data":    map[string]any{"order": map[string]any{"id": 9, "sessionId": 7, "status": "new", "totalAmount": "30"}},
		}, true
	})
	conn := dialTest(t, testOptions(fs.url()))

	req := model.CreateOrderRequest{
		SessionID: 7,
		Items:     []model.OrderLine{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}},
	}
	order, err := conn.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != 9 || order.Status != model.OrderNew {
		t.Fatalf("unexpected order %+v", order)
	}

	sent := fs.waitFrame(t, EventCreateOrder)
	var got model.CreateOrderRequest
	if err := json.Unmarshal(sent.Data, &got); err != nil {
		t.Fatalf("decode sent payload: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ItemID != 1 || got.Items[0].Quantity != 2 || got.Items[1].ItemID != 2 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestCreateOrderTimeout(t *testing.T) {
	fs := newFakeServer(t, func(f frame) (any, bool) { return nil, false })
	opts := testOptions(fs.url())
	opts.AckTimeout = 50 * time.Millisecond
	conn := dialTest(t, opts)

	start := time.Now()
	_, err := conn.CreateOrder(context.Background(), model.CreateOrderRequest{SessionID: 1})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("timed out too early: %s", elapsed)
	}
	if n := conn.PendingAcks(); n != 0 {
		t.Fatalf("expected no pending acks, got %d", n)
	}
}

func TestCreateOrderRejected(t *testing.T) {
	fs := newFakeServer(t, func(f frame) (any, bool) {
		return map[string]any{"success": false, "message": "session closed"}, true
	})
	conn := dialTest(t, testOptions(fs.url()))

	_, err := conn.CreateOrder(context.Background(), model.CreateOrderRequest{SessionID: 1})
	var ackErr *AckError
	if !errors.As(err, &ackErr) {
		t.Fatalf("expected AckError, got %v", err)
	}
	if ackErr.Message != "session closed" {
		t.Fatalf("unexpected message %q", ackErr.Message)
	}
}

func TestGetCustomerOrders(t *testing.T) {
	fs := newFakeServer(t, func(f frame) (any, bool) {
		return map[string]any{
			"success": true,
			"data": map[string]any{"orders": []map[string]any{
				{"id": 1, "status": "new"},
				{"id": 2, "status": "delivered"},
			}},
		}, true
	})
	conn := dialTest(t, testOptions(fs.url()))

	orders, err := conn.GetCustomerOrders(context.Background(), 7)
	if err != nil {
		t.Fatalf("get orders: %v", err)
	}
	if len(orders) != 2 || orders[1].Status != model.OrderDelivered {
		t.Fatalf("unexpected orders %+v", orders)
	}
	sent := fs.waitFrame(t, EventGetCustomerOrders)
	if string(sent.Data) != "7" {
		t.Fatalf("expected session id payload, got %s", sent.Data)
	}
}

func TestPushEventsAndOff(t *testing.T) {
	fs := newFakeServer(t, nil)
	conn := dialTest(t, testOptions(fs.url()))

	got := make(chan OrderEvent, 4)
	off := conn.On(EventOrderCreated, func(data json.RawMessage) {
		if ev, ok := DecodeOrderEvent(data); ok {
			got <- ev
		}
	})

	fs.push(t, EventOrderCreated, map[string]any{"order": map[string]any{"id": 5, "status": "new"}})
	select {
	case ev := <-got:
		if ev.Order.ID != 5 {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("push not delivered")
	}

	off()
	fs.push(t, EventOrderCreated, map[string]any{"order": map[string]any{"id": 6}})
	// The ack arrives after the push, so the read loop has dispatched it.
	fs.setReply(func(f frame) (any, bool) { return map[string]any{"success": true, "data": []any{}}, true })
	if _, err := conn.GetCustomerOrders(context.Background(), 1); err != nil {
		t.Fatalf("get orders: %v", err)
	}
	select {
	case ev := <-got:
		t.Fatalf("handler called after off: %+v", ev)
	default:
	}
}

func TestReconnectRejoinsRooms(t *testing.T) {
	fs := newFakeServer(t, nil)
	conn := dialTest(t, testOptions(fs.url()))

	reconnected := make(chan struct{}, 1)
	conn.OnReconnect(func() { reconnected <- struct{}{} })

	if err := conn.JoinCustomerSession(7); err != nil {
		t.Fatalf("join: %v", err)
	}
	fs.waitFrame(t, EventJoinSession)

	fs.kick()

	rejoin := fs.waitFrame(t, EventJoinSession)
	if string(rejoin.Data) != "7" {
		t.Fatalf("expected rejoin of session 7, got %s", rejoin.Data)
	}
	select {
	case <-reconnected:
	case <-time.After(2 * time.Second):
		t.Fatalf("reconnect hook not called")
	}
	if fs.connCount() < 2 {
		t.Fatalf("expected a second server connection")
	}
	if !conn.Connected() {
		t.Fatalf("expected connection to be live after reconnect")
	}
}

func TestLeaveForgetsRoom(t *testing.T) {
	fs := newFakeServer(t, nil)
	conn := dialTest(t, testOptions(fs.url()))

	_ = conn.JoinCustomerSession(3)
	if err := conn.LeaveCustomerSession(3); err != nil {
		t.Fatalf("leave: %v", err)
	}
	fs.waitFrame(t, EventLeaveSession)
	if rooms := conn.Rooms(); len(rooms) != 0 {
		t.Fatalf("expected no rooms, got %v", rooms)
	}
}

func TestClosedConnectionRejectsRequests(t *testing.T) {
	fs := newFakeServer(t, nil)
	conn := dialTest(t, testOptions(fs.url()))
	_ = conn.Close()

	if err := conn.Emit(EventJoinSession, 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := conn.GetCustomerOrders(context.Background(), 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if conn.Alive() {
		t.Fatalf("closed connection reported alive")
	}
}
