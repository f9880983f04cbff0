package realtime

import (
	"context"
	"sync"

	"table-order-kiosk/internal/logger"

	"go.uber.org/zap"
)

// Manager owns at most one connection at a time. Connect reuses it while it
// is alive; Disconnect tears it down so the next Connect starts fresh.
type Manager struct {
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	conn *Conn
}

func NewManager(opts Options) *Manager {
	return &Manager{opts: opts, logger: logger.OrNop(opts.Logger)}
}

func (m *Manager) Connect(ctx context.Context) (*Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil && m.conn.Alive() {
		return m.conn, nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}

	conn, err := Dial(ctx, m.opts)
	if err != nil {
		m.logger.Warn("realtime connect failed", zap.Error(err))
		return nil, err
	}
	m.conn = conn
	return conn, nil
}

// Connection returns the current connection without creating one.
func (m *Manager) Connection() *Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func (m *Manager) Disconnect() error {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
