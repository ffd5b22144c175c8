package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrUnavailable marks transient connectivity failures; callers may retry
// after re-fetching affected state.
var ErrUnavailable = errors.New("store unavailable")

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and applies the schema.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		full_name  TEXT NOT NULL,
		matric_no  TEXT UNIQUE NOT NULL,
		level      TEXT NOT NULL DEFAULT '100',
		department TEXT NOT NULL,
		role       TEXT NOT NULL DEFAULT 'student',
		signature  TEXT NOT NULL DEFAULT '',
		password   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS active_sessions (
		id          TEXT PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		course_code TEXT NOT NULL,
		unique_code TEXT NOT NULL,
		department  TEXT NOT NULL,
		hoc_id      TEXT NOT NULL REFERENCES profiles(id),
		is_active   BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		student_id TEXT NOT NULL REFERENCES profiles(id),
		session_id TEXT NOT NULL REFERENCES active_sessions(id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'present',
		signed_at  TIMESTAMPTZ NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		UNIQUE (student_id, session_id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_department ON active_sessions(department, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_hoc        ON active_sessions(hoc_id) WHERE is_active;
	CREATE INDEX IF NOT EXISTS idx_attendance_session  ON attendance(session_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_student  ON attendance(student_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
