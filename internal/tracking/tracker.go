package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/logger"
	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/realtime"

	"go.uber.org/zap"
)

// Source is the realtime surface the tracker needs; *realtime.Conn satisfies it.
type Source interface {
	JoinCustomerSession(sessionID int64) error
	LeaveCustomerSession(sessionID int64) error
	GetCustomerOrders(ctx context.Context, sessionID int64) ([]model.Order, error)
	On(event string, fn realtime.Handler) func()
	OnReconnect(fn func()) func()
}

// TickerFunc starts a ticker and returns its channel and a stop func.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type Options struct {
	Interval time.Duration
	// Resync re-requests the snapshot after the connection comes back.
	Resync    bool
	Now       func() time.Time
	NewTicker TickerFunc
	// Language is read each time views are built; nil means English.
	Language func() i18n.Language
	Logger   *zap.Logger
}

// Tracker owns the tracked order list of one session while it is open.
// Events and ticks are applied under one lock.
type Tracker struct {
	src    Source
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	open      bool
	sessionID int64
	gen       uint64
	orders    []TrackedOrder
	offs      []func()
	stop      chan struct{}
	stopTick  func()

	subMu  sync.Mutex
	subSeq int
	subs   map[int]func([]View)
}

func NewTracker(src Source, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTicker == nil {
		opts.NewTicker = systemTicker
	}
	if opts.Language == nil {
		opts.Language = func() i18n.Language { return i18n.Default }
	}
	return &Tracker{
		src:    src,
		opts:   opts,
		logger: logger.OrNop(opts.Logger),
		subs:   make(map[int]func([]View)),
	}
}

// Open joins the session room, registers push listeners, starts the shared
// ticker and loads the snapshot. Reopening the same session is a no-op;
// opening another session closes the current one first. A failed snapshot
// load is returned but leaves the tracker open for pushes.
func (t *Tracker) Open(ctx context.Context, sessionID int64) error {
	t.mu.Lock()
	if t.open && t.sessionID == sessionID {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()
	t.Close()

	t.mu.Lock()
	t.open = true
	t.sessionID = sessionID
	t.gen++
	gen := t.gen
	t.orders = nil
	t.stop = make(chan struct{})
	ticks, stopTick := t.opts.NewTicker(t.opts.Interval)
	t.stopTick = stopTick
	t.offs = []func(){
		t.src.On(realtime.EventOrderCreated, t.handleCreated(gen)),
		t.src.On(realtime.EventOrderStatusUpdated, t.handleStatus(gen)),
	}
	if t.opts.Resync {
		t.offs = append(t.offs, t.src.OnReconnect(func() { t.resync(gen) }))
	}
	stop := t.stop
	t.mu.Unlock()

	if err := t.src.JoinCustomerSession(sessionID); err != nil {
		t.logger.Warn("join session room failed", zap.Int64("session_id", sessionID), zap.Error(err))
	}
	go t.run(ticks, stop, gen)

	t.logger.Info("order tracking opened", zap.Int64("session_id", sessionID))
	return t.load(ctx, gen)
}

// Close stops the ticker, removes listeners, leaves the room and discards
// the list. Responses that arrive afterwards are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	if !t.open {
		t.mu.Unlock()
		return
	}
	sessionID := t.sessionID
	offs := t.offs
	close(t.stop)
	t.stopTick()
	t.open = false
	t.gen++
	t.orders = nil
	t.offs = nil
	t.sessionID = 0
	t.mu.Unlock()

	for _, off := range offs {
		off()
	}
	if err := t.src.LeaveCustomerSession(sessionID); err != nil {
		t.logger.Debug("leave session room failed", zap.Int64("session_id", sessionID), zap.Error(err))
	}
	t.logger.Info("order tracking closed", zap.Int64("session_id", sessionID))
	t.publish(nil)
}

func (t *Tracker) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *Tracker) SessionID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

func (t *Tracker) Snapshot() []View {
	lang := t.opts.Language()
	t.mu.Lock()
	defer t.mu.Unlock()
	return Views(t.orders, lang)
}

// Subscribe calls fn with a fresh snapshot after every change and tick.
func (t *Tracker) Subscribe(fn func([]View)) func() {
	t.subMu.Lock()
	t.subSeq++
	id := t.subSeq
	t.subs[id] = fn
	t.subMu.Unlock()

	return func() {
		t.subMu.Lock()
		delete(t.subs, id)
		t.subMu.Unlock()
	}
}

func (t *Tracker) run(ticks <-chan time.Time, stop <-chan struct{}, gen uint64) {
	for {
		select {
		case <-stop:
			return
		case <-ticks:
			t.tick(gen)
		}
	}
}

func (t *Tracker) tick(gen uint64) {
	t.update(gen, Tick)
}

func (t *Tracker) load(ctx context.Context, gen uint64) error {
	t.mu.Lock()
	sessionID := t.sessionID
	t.mu.Unlock()

	orders, err := t.src.GetCustomerOrders(ctx, sessionID)
	if err != nil {
		t.logger.Warn("order snapshot failed", zap.Int64("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("load orders for session %d: %w", sessionID, err)
	}
	now := t.opts.Now()
	t.update(gen, func([]TrackedOrder) []TrackedOrder {
		return Load(orders, now)
	})
	return nil
}

func (t *Tracker) resync(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), realtime.DefaultAckTimeout)
	defer cancel()
	if err := t.load(ctx, gen); err != nil {
		return
	}
	t.logger.Info("order snapshot resynced after reconnect")
}

func (t *Tracker) handleCreated(gen uint64) realtime.Handler {
	return func(data json.RawMessage) {
		ev, ok := realtime.DecodeOrderEvent(data)
		if !ok {
			t.logger.Debug("order created push ignored")
			return
		}
		now := t.opts.Now()
		t.update(gen, func(orders []TrackedOrder) []TrackedOrder {
			return ApplyCreated(orders, ev.Order, now)
		})
	}
}

func (t *Tracker) handleStatus(gen uint64) realtime.Handler {
	return func(data json.RawMessage) {
		ev, ok := realtime.DecodeOrderEvent(data)
		if !ok {
			t.logger.Debug("order status push ignored")
			return
		}
		t.update(gen, func(orders []TrackedOrder) []TrackedOrder {
			return ApplyStatusUpdated(orders, ev.Order.ID, ev.Order.Status)
		})
	}
}

// update replaces the list under the lock. Work started for an earlier
// opening (a different gen) is dropped.
func (t *Tracker) update(gen uint64, fn func([]TrackedOrder) []TrackedOrder) {
	lang := t.opts.Language()
	t.mu.Lock()
	if !t.open || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.orders = fn(t.orders)
	views := Views(t.orders, lang)
	t.mu.Unlock()

	t.publish(views)
}

func (t *Tracker) publish(views []View) {
	if views == nil {
		views = []View{}
	}
	t.subMu.Lock()
	subs := make([]func([]View), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.subMu.Unlock()
	for _, fn := range subs {
		fn(views)
	}
}
