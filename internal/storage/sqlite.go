package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tasktrack/internal/db"
	"tasktrack/internal/migrate"
)

// SQLite persists keys in the workspace database so a restart keeps the session.
type SQLite struct {
	DB  *sql.DB
	Now func() time.Time
}

// OpenSQLite opens and migrates the workspace database.
func OpenSQLite(ctx context.Context, workspace string) (*SQLite, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Apply(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate %s: %w", db.Path(workspace), err)
	}
	return &SQLite{DB: conn}, nil
}

func (s *SQLite) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return v, err
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	ts := s.now().UTC().Format(time.RFC3339)
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at) VALUES (?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, ts)
	return err
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key=?`, key)
	return err
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}
