package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	key     TEXT PRIMARY KEY,
	value   TEXT NOT NULL,
	updated INTEGER NOT NULL
)`

var errClosed = errors.New("preferences store is closed")

// SQLite keeps preferences in a single table of SQLite database. One
// connection is shared and serialized.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open preferences database %s: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare preferences database %s: %w", path, err)
	}
	return &SQLite{conn: conn}, nil
}

// withConn runs fn interruptible by ctx.
func (s *SQLite) withConn(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return errClosed
	}
	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)
	return fn(s.conn)
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT value FROM preferences WHERE key = ?`,
			&sqlitex.ExecOptions{
				Args: []any{key},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					value, found = stmt.ColumnText(0), true
					return nil
				}})
	})
	if err != nil {
		return "", false, fmt.Errorf("unable to read preference %q: %w", key, err)
	}
	return value, found, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO preferences (key, value, updated) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = excluded.updated`,
			&sqlitex.ExecOptions{Args: []any{key, value, time.Now().Unix()}})
	})
	if err != nil {
		return fmt.Errorf("unable to store preference %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
