package session

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"attendancehub/internal/notify"
	"attendancehub/internal/store"
)

// Repository persists sessions in Postgres and publishes change
// notifications on the department-scoped feed.
type Repository struct {
	db   *sql.DB
	feed notify.Feed
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB, feed notify.Feed) *Repository {
	return &Repository{db: db, feed: feed}
}

const sessionColumns = `id, created_at, course_code, unique_code, department, hoc_id, is_active`

// Create writes a new session.
func (r *Repository) Create(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO active_sessions (id, created_at, course_code, unique_code, department, hoc_id, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, s.ID, s.CreatedAt, s.CourseCode, s.UniqueCode, s.Department, s.HOCID, s.IsActive)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, store.Classify(err)
	}
	r.publish(s.Department, notify.OpInsert)
	return s, nil
}

// Get re-reads a session by id.
func (r *Repository) Get(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM active_sessions WHERE id = $1`, id)
	var s Session
	err := row.Scan(&s.ID, &s.CreatedAt, &s.CourseCode, &s.UniqueCode, &s.Department, &s.HOCID, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, store.Classify(err)
	}
	return s, nil
}

// SetActive flips the is_active flag.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	row := r.db.QueryRowContext(ctx, `
		UPDATE active_sessions SET is_active = $2 WHERE id = $1
		RETURNING department
	`, id, active)
	var department string
	if err := row.Scan(&department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return store.Classify(err)
	}
	r.publish(department, notify.OpUpdate)
	return nil
}

// Delete removes the session row; attendance rows go with it via
// ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id string) error {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM active_sessions WHERE id = $1
		RETURNING department
	`, id)
	var department string
	if err := row.Scan(&department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return store.Classify(err)
	}
	r.publish(department, notify.OpDelete)
	return nil
}

// ListByDepartment returns the department's sessions, newest first.
func (r *Repository) ListByDepartment(ctx context.Context, department string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM active_sessions
		WHERE department = $1
		ORDER BY created_at DESC
	`, department)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.CourseCode, &s.UniqueCode, &s.Department, &s.HOCID, &s.IsActive); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, store.Classify(rows.Err())
}

// LatestActiveByHOC returns the most recent active session owned by hocID.
func (r *Repository) LatestActiveByHOC(ctx context.Context, hocID string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM active_sessions
		WHERE hoc_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1
	`, hocID)
	var s Session
	err := row.Scan(&s.ID, &s.CreatedAt, &s.CourseCode, &s.UniqueCode, &s.Department, &s.HOCID, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify(err)
	}
	return &s, nil
}

func (r *Repository) publish(department, op string) {
	if r.feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.feed.Publish(ctx, notify.Notification{Table: notify.TableSessions, Op: op, Key: department}); err != nil {
		log.Printf("session feed publish failed: %v", err)
	}
}
