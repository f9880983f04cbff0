package localstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

type fakeDB struct {
	execs   []execCall
	queries []execCall
	row     fakeRow
	execErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("OK"), f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return f.row
}

func TestPostgresBackendGet(t *testing.T) {
	boom := errors.New("connection reset")
	cases := []struct {
		name    string
		row     fakeRow
		value   string
		ok      bool
		wantErr bool
	}{
		{name: "present", row: fakeRow{value: `"tok"`}, value: `"tok"`, ok: true},
		{name: "missing row", row: fakeRow{err: pgx.ErrNoRows}},
		{name: "query failure", row: fakeRow{err: boom}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &fakeDB{row: tc.row}
			value, ok, err := NewPostgresBackend(db, "table-4").Get(context.Background(), KeyToken)
			if (err != nil) != tc.wantErr || ok != tc.ok || value != tc.value {
				t.Fatalf("Get = %q, %v, %v", value, ok, err)
			}
			q := db.queries[0]
			if !strings.Contains(q.sql, "where namespace = $1 and key = $2") {
				t.Fatalf("unexpected query %q", q.sql)
			}
			if q.args[0] != "table-4" || q.args[1] != KeyToken {
				t.Fatalf("unexpected args %v", q.args)
			}
		})
	}
}

func TestPostgresBackendWrites(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	pg := NewPostgresBackend(db, "")

	if err := pg.Set(ctx, KeyUser, "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := pg.Delete(ctx); err != nil {
		t.Fatalf("empty delete: %v", err)
	}
	if err := pg.Delete(ctx, KeyToken, KeyUser); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := pg.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(db.execs) != 3 {
		t.Fatalf("expected 3 statements (empty delete skipped), got %d", len(db.execs))
	}
	set, del, wipe := db.execs[0], db.execs[1], db.execs[2]
	if !strings.Contains(set.sql, "on conflict (namespace, key) do update") || set.args[0] != "default" || set.args[1] != KeyUser || set.args[2] != "{}" {
		t.Fatalf("unexpected upsert %q %v", set.sql, set.args)
	}
	keys, ok := del.args[1].([]string)
	if !strings.Contains(del.sql, "key = any($2)") || !ok || len(keys) != 2 {
		t.Fatalf("unexpected delete %q %v", del.sql, del.args)
	}
	if !strings.Contains(wipe.sql, "delete from kiosk_kv where namespace = $1") || len(wipe.args) != 1 {
		t.Fatalf("unexpected clear %q %v", wipe.sql, wipe.args)
	}
}

func TestPostgresBackendPropagatesExecErrors(t *testing.T) {
	db := &fakeDB{execErr: errors.New("read-only transaction")}
	if err := NewPostgresBackend(db, "t").Set(context.Background(), "k", "v"); err == nil {
		t.Fatalf("expected exec error")
	}
}
