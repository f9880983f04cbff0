package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/localstore"
	"table-order-kiosk/internal/logger"
	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/qrcode"
	"table-order-kiosk/internal/queue"
	"table-order-kiosk/internal/realtime"
	"table-order-kiosk/internal/state"
	"table-order-kiosk/internal/tracking"
	"table-order-kiosk/internal/validation"

	"go.uber.org/zap"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionClosed  = errors.New("session closed by the restaurant")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNotInCart      = errors.New("item is not in the cart")

	// ErrSubmitInProgress rejects a submission while another is in flight.
	ErrSubmitInProgress = errors.New("an order submission is already in progress")
)

// Backend is the restaurant HTTP API; *api.Client satisfies it.
type Backend interface {
	Categories(ctx context.Context) ([]model.Category, error)
	ItemsByCategory(ctx context.Context, categoryID int64) ([]model.MenuItem, error)
	Items(ctx context.Context) ([]model.MenuItem, error)
	Item(ctx context.Context, itemID int64) (model.MenuItem, error)
	StartSession(ctx context.Context, qrCode string, guests int) (model.Session, error)
	Session(ctx context.Context, sessionID int64) (model.Session, error)
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error)
	OrdersBySession(ctx context.Context, sessionID int64) ([]model.Order, error)
	SessionSummary(ctx context.Context, sessionID int64) (model.OrderSummary, error)
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Profile(ctx context.Context) (model.User, error)
	Logout(ctx context.Context) error
}

// Uploader stores rendered receipts; *storage.ObjectStore satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Deps struct {
	API      Backend
	Realtime *realtime.Manager
	Store    *localstore.Store
	State    *state.Store
	Events   queue.Publisher
	Receipts Uploader

	ImageBaseURL string
	Tracking     tracking.Options
	Logger       *zap.Logger
	Now          func() time.Time
}

// Diner composes the kiosk's page flows: landing, session, menu, cart,
// order tracking and the backend notes tool.
type Diner struct {
	api      Backend
	rt       *realtime.Manager
	store    *localstore.Store
	state    *state.Store
	events   queue.Publisher
	receipts Uploader

	imageBase   string
	trackingOpt tracking.Options
	logger      *zap.Logger
	now         func() time.Time

	trackMu     sync.Mutex
	tracker     *tracking.Tracker
	trackerConn *realtime.Conn
	viewers     int

	submitMu   sync.Mutex
	submitting bool

	notesMu sync.Mutex

	langMu sync.Mutex
	lang   i18n.Language
}

func New(deps Deps) *Diner {
	d := &Diner{
		api:         deps.API,
		rt:          deps.Realtime,
		store:       deps.Store,
		state:       deps.State,
		events:      deps.Events,
		receipts:    deps.Receipts,
		imageBase:   deps.ImageBaseURL,
		trackingOpt: deps.Tracking,
		logger:      logger.OrNop(deps.Logger),
		now:         deps.Now,
	}
	if d.store == nil {
		d.store = localstore.New(nil)
	}
	if d.state == nil {
		d.state = state.NewStore(state.State{})
	}
	if d.events == nil {
		d.events = queue.NopPublisher{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.trackingOpt.Logger == nil {
		d.trackingOpt.Logger = d.logger
	}
	if d.trackingOpt.Language == nil {
		d.trackingOpt.Language = d.Language
	}
	d.lang = i18n.Default
	if lang, ok := d.store.Language(); ok {
		d.lang = lang
	}
	return d
}

func (d *Diner) State() state.State {
	return d.state.State()
}

// Restore hydrates the in-memory state from local storage at startup.
func (d *Diner) Restore() {
	if token := d.store.Token(); token != "" {
		user, _ := d.store.User()
		d.state.Dispatch(state.SetAuth(token, user))
	}
	if record, ok := d.store.GetSession(); ok {
		if d.store.IsSessionExpired() {
			d.logger.Info("stored session expired; clearing", zap.Int64("session_id", record.SessionID))
			d.clearSession()
			return
		}
		d.state.Dispatch(state.LoadSession(record.SessionID))
	}
}

// SessionInfo is what the landing and guard need to know about the session.
type SessionInfo struct {
	SessionID int64          `json:"sessionId"`
	CreatedAt string         `json:"createdAt"`
	AgeHours  float64        `json:"ageHours"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Session   *model.Session `json:"session,omitempty"`
}

// ActiveSession returns the current session without any network call.
// An expired session is cleared locally and reported as ErrSessionExpired.
func (d *Diner) ActiveSession() (SessionInfo, error) {
	if !d.store.Available() {
		// Without local storage the session lives in memory only and never expires.
		current := d.state.State().Session
		if !current.Active() {
			return SessionInfo{}, ErrNoSession
		}
		return SessionInfo{SessionID: current.SessionID, Session: current.Session}, nil
	}

	record, ok := d.store.GetSession()
	if !ok {
		return SessionInfo{}, ErrNoSession
	}
	if d.store.IsSessionExpired() {
		d.logger.Info("session expired", zap.Int64("session_id", record.SessionID), zap.Float64("age_hours", d.store.SessionAgeHours()))
		d.endSessionLocally(context.Background(), record.SessionID)
		return SessionInfo{}, ErrSessionExpired
	}

	current := d.state.State().Session
	if current.SessionID != record.SessionID {
		d.state.Dispatch(state.LoadSession(record.SessionID))
		current = d.state.State().Session
	}

	info := SessionInfo{
		SessionID: record.SessionID,
		CreatedAt: record.CreatedAt,
		AgeHours:  d.store.SessionAgeHours(),
		Session:   current.Session,
	}
	if createdAt, err := time.Parse(time.RFC3339, record.CreatedAt); err == nil {
		info.ExpiresAt = createdAt.Add(d.store.MaxAge())
	}
	return info, nil
}

// Home resolves the landing page: the active session with its backend
// details, or an error telling the UI to show the scan screen.
func (d *Diner) Home(ctx context.Context) (SessionInfo, error) {
	info, err := d.ActiveSession()
	if err != nil {
		return info, err
	}
	if info.Session != nil {
		return info, nil
	}

	session, err := d.api.Session(ctx, info.SessionID)
	if err != nil {
		d.logger.Warn("session details unavailable", zap.Int64("session_id", info.SessionID), zap.Error(err))
		return info, nil
	}
	if session.Status == model.SessionClosed {
		d.endSessionLocally(ctx, info.SessionID)
		return SessionInfo{}, ErrSessionClosed
	}
	if session.ID == 0 {
		session.ID = info.SessionID
	}
	d.state.Dispatch(state.SetSession(session))
	info.Session = &session
	return info, nil
}

func (d *Diner) ScanQR(payload string) (string, error) {
	code, err := qrcode.Parse(payload)
	if err != nil {
		return "", &validation.Error{Field: "qrCode", Message: err.Error()}
	}
	return code, nil
}

// StartSession opens a session for the scanned table. Input is validated
// before the single backend call; nothing is stored when the call fails.
func (d *Diner) StartSession(ctx context.Context, qrCode string, guests int) (model.Session, error) {
	if err := validation.StartSession(qrCode, guests); err != nil {
		return model.Session{}, err
	}

	session, err := d.api.StartSession(ctx, qrCode, guests)
	if err != nil {
		return model.Session{}, err
	}
	if session.ID <= 0 {
		return model.Session{}, fmt.Errorf("start session: backend returned no session id")
	}

	d.state.Dispatch(state.ClearCart())
	d.state.Dispatch(state.SetSession(session))
	if err := d.store.SetSession(session.ID); err != nil {
		d.logger.Warn("session not persisted", zap.Int64("session_id", session.ID), zap.Error(err))
	}
	d.logger.Info("session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("table_id", session.TableID),
		zap.Int("guests", guests),
	)

	d.events.Publish(ctx, queue.NewEvent(queue.SessionStarted, session.ID, map[string]any{
		"tableId":        session.TableID,
		"qrCode":         qrCode,
		"numberOfGuests": guests,
	}))

	if d.rt != nil {
		if _, err := d.rt.Connect(ctx); err != nil {
			d.logger.Warn("realtime unavailable after session start", zap.Error(err))
		}
	}
	return session, nil
}

// EndSession forgets the session on this kiosk: tracking stops, the cart
// and stored session are cleared.
func (d *Diner) EndSession(ctx context.Context) {
	sid := d.state.State().Session.SessionID
	if record, ok := d.store.GetSession(); ok {
		sid = record.SessionID
	}
	d.endSessionLocally(ctx, sid)
}

func (d *Diner) endSessionLocally(ctx context.Context, sessionID int64) {
	d.stopTracking()
	d.clearSession()
	if sessionID > 0 {
		d.events.Publish(ctx, queue.NewEvent(queue.SessionEnded, sessionID, nil))
		d.logger.Info("session ended", zap.Int64("session_id", sessionID))
	}
}

func (d *Diner) clearSession() {
	d.state.Dispatch(state.ClearCart())
	d.state.Dispatch(state.ClearSession())
	d.store.ClearSession()
}
