package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"table-order-kiosk/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultReconnectAttempts = 10
	DefaultReconnectDelay    = time.Second
	DefaultAckTimeout        = 10 * time.Second

	writeWait = 5 * time.Second
)

var (
	ErrTimeout      = errors.New("realtime: request timed out")
	ErrNotConnected = errors.New("realtime: not connected")
	ErrClosed       = errors.New("realtime: connection closed")
)

type Options struct {
	URL               string
	Header            http.Header
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	AckTimeout        time.Duration
	Logger            *zap.Logger
	Dialer            *websocket.Dialer
}

func (o Options) withDefaults() Options {
	if o.ReconnectAttempts <= 0 {
		o.ReconnectAttempts = DefaultReconnectAttempts
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.AckTimeout <= 0 {
		o.AckTimeout = DefaultAckTimeout
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	o.Logger = logger.OrNop(o.Logger)
	return o
}

// frame is the single wire shape. Emits carry Event (and ID when an ack is
// wanted); acknowledgements carry Ack; server pushes carry Event only.
type frame struct {
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	ID    *uint64         `json:"id,omitempty"`
	Ack   *uint64         `json:"ack,omitempty"`
}

type Handler func(data json.RawMessage)

type listener struct {
	id uint64
	fn Handler
}

// Conn is one owned realtime connection. It reconnects on its own after a
// drop and re-joins the session rooms it was in.
type Conn struct {
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	ws        *websocket.Conn
	connected bool
	closed    bool
	gaveUp    bool
	nextID    uint64
	pending   map[uint64]chan json.RawMessage
	listeners map[string][]listener
	onRecon   []listener
	rooms     map[int64]struct{}

	writeMu sync.Mutex
	done    chan struct{}
}

// Dial opens the connection. A failed initial dial is returned to the caller;
// later drops are retried in the background.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	opts = opts.withDefaults()
	if opts.URL == "" {
		return nil, fmt.Errorf("realtime: url is required")
	}

	ws, _, err := opts.Dialer.DialContext(ctx, opts.URL, opts.Header)
	if err != nil {
		return nil, fmt.Errorf("realtime dial %s: %w", opts.URL, err)
	}

	c := &Conn{
		opts:      opts,
		logger:    opts.Logger,
		ws:        ws,
		connected: true,
		pending:   make(map[uint64]chan json.RawMessage),
		listeners: make(map[string][]listener),
		rooms:     make(map[int64]struct{}),
		done:      make(chan struct{}),
	}
	c.logger.Info("realtime connected", zap.String("url", opts.URL))
	go c.readLoop(ws)
	return c, nil
}

func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Alive reports whether the connection is open or still trying to reconnect.
func (c *Conn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !c.gaveUp
}

// On registers fn for a server push event. The returned func removes it.
func (c *Conn) On(event string, fn Handler) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[event] = append(c.listeners[event], listener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.listeners[event] = removeListener(c.listeners[event], id)
		if len(c.listeners[event]) == 0 {
			delete(c.listeners, event)
		}
	}
}

// OnReconnect runs fn after every successful reconnect, once rooms are re-joined.
func (c *Conn) OnReconnect(fn func()) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.onRecon = append(c.onRecon, listener{id: id, fn: func(json.RawMessage) { fn() }})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.onRecon = removeListener(c.onRecon, id)
	}
}

func (c *Conn) Emit(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("realtime encode %s: %w", event, err)
	}
	return c.write(frame{Event: event, Data: payload})
}

// EmitWithAck sends event and waits for its acknowledgement until ctx ends.
// The waiter is settled once: an ack arriving after the deadline is dropped.
func (c *Conn) EmitWithAck(ctx context.Context, event string, data any) (json.RawMessage, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("realtime encode %s: %w", event, err)
	}

	ch := make(chan json.RawMessage, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.write(frame{Event: event, Data: payload, ID: &id}); err != nil {
		c.forget(id)
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		c.forget(id)
		c.logger.Warn("realtime request abandoned", zap.String("event", event), zap.Error(ctx.Err()))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	case <-c.done:
		c.forget(id)
		return nil, ErrClosed
	}
}

// PendingAcks is the number of requests still waiting for an acknowledgement.
func (c *Conn) PendingAcks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	ws := c.ws
	c.ws = nil
	close(c.done)
	c.mu.Unlock()

	if ws == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return ws.Close()
}

func (c *Conn) write(f frame) error {
	c.mu.Lock()
	ws := c.ws
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if ws == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(f); err != nil {
		return fmt.Errorf("realtime write %s: %w", f.Event, err)
	}
	return nil
}

func (c *Conn) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.dropped(ws, err)
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Debug("realtime frame ignored", zap.Error(err))
			continue
		}
		c.dispatch(f)
	}
}

func (c *Conn) dispatch(f frame) {
	if f.Ack != nil {
		c.mu.Lock()
		ch, ok := c.pending[*f.Ack]
		delete(c.pending, *f.Ack)
		c.mu.Unlock()
		if ok {
			ch <- f.Data
		}
		return
	}
	if f.Event == "" {
		return
	}

	c.mu.Lock()
	handlers := append([]listener(nil), c.listeners[f.Event]...)
	c.mu.Unlock()
	for _, l := range handlers {
		l.fn(f.Data)
	}
}

func (c *Conn) dropped(ws *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.closed || c.ws != ws {
		c.mu.Unlock()
		return
	}
	c.ws = nil
	c.connected = false
	c.mu.Unlock()

	_ = ws.Close()
	c.logger.Warn("realtime connection lost", zap.Error(cause))
	go c.reconnect()
}

func (c *Conn) reconnect() {
	for attempt := 1; attempt <= c.opts.ReconnectAttempts; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(c.opts.ReconnectDelay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.opts.ReconnectDelay+writeWait)
		ws, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
		cancel()
		if err != nil {
			c.logger.Warn("realtime reconnect failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = ws.Close()
			return
		}
		c.ws = ws
		c.connected = true
		rooms := make([]int64, 0, len(c.rooms))
		for id := range c.rooms {
			rooms = append(rooms, id)
		}
		hooks := append([]listener(nil), c.onRecon...)
		c.mu.Unlock()

		c.logger.Info("realtime reconnected", zap.Int("attempt", attempt))
		go c.readLoop(ws)
		for _, id := range rooms {
			if err := c.Emit(EventJoinSession, id); err != nil {
				c.logger.Warn("realtime rejoin failed", zap.Int64("session_id", id), zap.Error(err))
			}
		}
		for _, h := range hooks {
			h.fn(nil)
		}
		return
	}

	c.mu.Lock()
	c.gaveUp = true
	c.mu.Unlock()
	c.logger.Error("realtime reconnect gave up", zap.Int("attempts", c.opts.ReconnectAttempts))
}

func removeListener(list []listener, id uint64) []listener {
	out := list[:0]
	for _, l := range list {
		if l.id != id {
			out = append(out, l)
		}
	}
	return out
}
