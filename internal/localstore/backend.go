package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Backend is a flat string key-value store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

// FileBackend keeps every key in one JSON object on disk. Writes go through
// a temp file and rename so a crash never leaves a half-written store.
type FileBackend struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("local store path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create local store dir: %w", err)
		}
	}

	fb := &FileBackend{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fb, nil
		}
		return nil, fmt.Errorf("read local store: %w", err)
	}
	if len(data) > 0 {
		// A corrupt file is treated as empty rather than blocking the kiosk.
		_ = json.Unmarshal(data, &fb.values)
		if fb.values == nil {
			fb.values = make(map[string]string)
		}
	}
	return fb, nil
}

func (f *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileBackend) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flushLocked(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileBackend) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := f.values[key]; ok {
			removed[key] = v
			delete(f.values, key)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := f.flushLocked(); err != nil {
		for key, v := range removed {
			f.values[key] = v
		}
		return err
	}
	return nil
}

func (f *FileBackend) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.values
	f.values = make(map[string]string)
	if err := f.flushLocked(); err != nil {
		f.values = prev
		return err
	}
	return nil
}

func (f *FileBackend) flushLocked() error {
	data, err := json.Marshal(f.values)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace local store: %w", err)
	}
	return nil
}

// DB is the slice of *pgxpool.Pool the postgres backend uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend shares the store between kiosks of one table group, keyed
// by namespace.
type PostgresBackend struct {
	db        DB
	namespace string
}

func NewPostgresBackend(db DB, namespace string) *PostgresBackend {
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresBackend{db: db, namespace: namespace}
}

func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		create table if not exists kiosk_kv (
		  namespace  text not null,
		  key        text not null,
		  value      text not null,
		  updated_at timestamptz not null default now(),
		  primary key (namespace, key)
		)
	`)
	return err
}

func (p *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(ctx, `select value from kiosk_kv where namespace = $1 and key = $2`, p.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key, value string) error {
	_, err := p.db.Exec(ctx, `
		insert into kiosk_kv (namespace, key, value, updated_at)
		values ($1, $2, $3, now())
		on conflict (namespace, key) do update set value = excluded.value, updated_at = now()
	`, p.namespace, key, value)
	return err
}

func (p *PostgresBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := p.db.Exec(ctx, `delete from kiosk_kv where namespace = $1 and key = any($2)`, p.namespace, keys)
	return err
}

func (p *PostgresBackend) Clear(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `delete from kiosk_kv where namespace = $1`, p.namespace)
	return err
}

// MemoryBackend is an in-process store, used when nothing must survive a restart.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}
