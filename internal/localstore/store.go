package localstore

import (
	"context"
	"encoding/json"
	"time"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/logger"
	"table-order-kiosk/internal/model"

	"go.uber.org/zap"
)

const (
	KeySessionData   = "sessionData"
	KeyLegacySession = "sessionId"
	KeyToken         = "token"
	KeyUser          = "user"
	KeyBackendNotes  = "backendNotes"
	KeyLanguage      = "language"

	DefaultSessionMaxAge = 10 * time.Hour

	opTimeout = 3 * time.Second

	// isoLayout matches JavaScript's Date.toISOString output.
	isoLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Store is the kiosk's local persistence. With a nil backend every write is
// dropped and every read reports absence, so callers never branch on it.
type Store struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
	maxAge  time.Duration
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMaxAge(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger.OrNop(log)
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
		maxAge:  DefaultSessionMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Available() bool {
	return s != nil && s.backend != nil
}

// Get decodes the JSON value stored under key. Absent or undecodable values
// report false.
func Get[T any](s *Store, key string) (T, bool) {
	var zero T
	raw, ok := s.getRaw(key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, false
	}
	return out, true
}

// Set stores value as JSON. Errors are logged and returned; callers may ignore them.
func Set[T any](s *Store, key string, value T) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("local store encode failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return s.setRaw(key, string(data))
}

func (s *Store) Remove(keys ...string) {
	if !s.Available() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.logger.Warn("local store remove failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *Store) Clear() {
	if !s.Available() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Clear(ctx); err != nil {
		s.logger.Warn("local store clear failed", zap.Error(err))
	}
}

// SetSession records the session id with the current time as the single
// source of session timing, dropping the legacy bare-id key.
func (s *Store) SetSession(sessionID int64) error {
	record := model.SessionRecord{
		SessionID: sessionID,
		CreatedAt: s.now().UTC().Format(isoLayout),
	}
	if err := Set(s, KeySessionData, record); err != nil {
		return err
	}
	s.Remove(KeyLegacySession)
	return nil
}

func (s *Store) GetSession() (model.SessionRecord, bool) {
	record, ok := Get[model.SessionRecord](s, KeySessionData)
	if !ok || record.SessionID == 0 {
		return model.SessionRecord{}, false
	}
	return record, true
}

func (s *Store) ClearSession() {
	s.Remove(KeySessionData, KeyLegacySession)
}

// SessionAge is zero when there is no readable session.
func (s *Store) SessionAge() time.Duration {
	record, ok := s.GetSession()
	if !ok {
		return 0
	}
	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		return 0
	}
	return s.now().Sub(createdAt)
}

func (s *Store) MaxAge() time.Duration {
	return s.maxAge
}

func (s *Store) SessionAgeHours() float64 {
	return s.SessionAge().Hours()
}

// IsSessionExpired is true without session data, with an unreadable
// timestamp, or once the age strictly exceeds the max age.
func (s *Store) IsSessionExpired() bool {
	record, ok := s.GetSession()
	if !ok {
		return true
	}
	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		return true
	}
	return s.now().Sub(createdAt) > s.maxAge
}

func (s *Store) Token() string {
	token, _ := Get[string](s, KeyToken)
	return token
}

func (s *Store) SetToken(token string) error {
	return Set(s, KeyToken, token)
}

func (s *Store) User() (model.User, bool) {
	return Get[model.User](s, KeyUser)
}

func (s *Store) SetUser(user model.User) error {
	return Set(s, KeyUser, user)
}

// Language is the saved display language; ok is false when none is saved
// or the saved value is not supported.
func (s *Store) Language() (i18n.Language, bool) {
	raw, ok := Get[string](s, KeyLanguage)
	if !ok {
		return "", false
	}
	return i18n.Parse(raw)
}

func (s *Store) SetLanguage(lang i18n.Language) error {
	return Set(s, KeyLanguage, string(lang))
}

// ClearCredentials drops the cached token and user.
func (s *Store) ClearCredentials() {
	s.Remove(KeyToken, KeyUser)
}

func (s *Store) getRaw(key string) (string, bool) {
	if !s.Available() {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("local store read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return raw, ok
}

func (s *Store) setRaw(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.logger.Warn("local store write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
