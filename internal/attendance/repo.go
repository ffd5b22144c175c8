package attendance

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

// Repository persists attendance entries in Postgres and publishes change
// notifications on the session-scoped feed.
type Repository struct {
	db   *sql.DB
	feed notify.Feed
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB, feed notify.Feed) *Repository {
	return &Repository{db: db, feed: feed}
}

const entryColumns = `id, created_at, student_id, session_id, status, signed_at, department`

// Insert writes a new entry. A uniqueness violation on the
// (student_id, session_id) pair maps to ErrAlreadySigned; a referential
// failure means the session vanished mid-flight and maps to ErrSessionGone.
func (r *Repository) Insert(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusPresent
	}
	if e.SignedAt.IsZero() {
		e.SignedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, student_id, session_id, status, signed_at, department)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, e.ID, e.StudentID, e.SessionID, e.Status, e.SignedAt, e.Department)
	if err := row.Scan(&e.CreatedAt); err != nil {
		switch store.PgCode(err) {
		case store.CodeUniqueViolation:
			return Entry{}, ErrAlreadySigned
		case store.CodeFKViolation:
			return Entry{}, ErrSessionGone
		}
		return Entry{}, store.Classify(err)
	}
	r.publish(e.SessionID, notify.OpInsert)
	return e, nil
}

// Get returns a single entry by id.
func (r *Repository) Get(ctx context.Context, id string) (Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM attendance WHERE id = $1`, id)
	var e Entry
	err := row.Scan(&e.ID, &e.CreatedAt, &e.StudentID, &e.SessionID, &e.Status, &e.SignedAt, &e.Department)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		return Entry{}, store.Classify(err)
	}
	return e, nil
}

// Find returns the entry for the (student, session) pair, or nil.
func (r *Repository) Find(ctx context.Context, studentID, sessionID string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM attendance
		WHERE student_id = $1 AND session_id = $2
	`, studentID, sessionID)
	var e Entry
	err := row.Scan(&e.ID, &e.CreatedAt, &e.StudentID, &e.SessionID, &e.Status, &e.SignedAt, &e.Department)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify(err)
	}
	return &e, nil
}

// Void removes a single entry.
func (r *Repository) Void(ctx context.Context, id string) error {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM attendance WHERE id = $1
		RETURNING session_id
	`, id)
	var sessionID string
	if err := row.Scan(&sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		return store.Classify(err)
	}
	r.publish(sessionID, notify.OpDelete)
	return nil
}

// ListBySession returns the roster for a session, newest signature first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.created_at, a.student_id, a.session_id, a.status, a.signed_at, a.department,
		       p.full_name, p.matric_no, p.signature
		FROM attendance a
		JOIN profiles p ON p.id = a.student_id
		WHERE a.session_id = $1
		ORDER BY a.signed_at DESC
	`, sessionID)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer rows.Close()

	var roster []RosterEntry
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.StudentID, &e.SessionID, &e.Status, &e.SignedAt, &e.Department,
			&e.FullName, &e.MatricNo, &e.Signature); err != nil {
			return nil, err
		}
		roster = append(roster, e)
	}
	return roster, store.Classify(rows.Err())
}

// ListByStudent returns the student's own history, newest first.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.created_at, a.student_id, a.session_id, a.status, a.signed_at, a.department,
		       s.course_code, s.created_at
		FROM attendance a
		JOIN active_sessions s ON s.id = a.session_id
		WHERE a.student_id = $1
		ORDER BY a.signed_at DESC
	`, studentID)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer rows.Close()

	var history []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.StudentID, &e.SessionID, &e.Status, &e.SignedAt, &e.Department,
			&e.CourseCode, &e.SessionCreated); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	return history, store.Classify(rows.Err())
}

func (r *Repository) publish(sessionID, op string) {
	if r.feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.feed.Publish(ctx, notify.Notification{Table: notify.TableAttendance, Op: op, Key: sessionID}); err != nil {
		log.Printf("attendance feed publish failed: %v", err)
	}
}
