package attendance

import (
	"context"
	"errors"
	"time"
)

// Entry statuses. Only StatusPresent is produced by the check-in flow.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

var (
	// ErrInvalidPin means the submitted code does not match the session's
	// current join code.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrSessionClosed means the portal was deactivated before submission.
	ErrSessionClosed = errors.New("session closed")
	// ErrSessionGone means the session was deleted between PIN distribution
	// and submission.
	ErrSessionGone = errors.New("session no longer exists")
	// ErrAlreadySigned means an entry for this (student, session) pair
	// already exists.
	ErrAlreadySigned = errors.New("already signed for this session")
	// ErrEntryNotFound means no attendance entry matched.
	ErrEntryNotFound = errors.New("attendance entry not found")
)

// Entry is a join record. At most one exists per (student, session) pair;
// the ledger's uniqueness constraint is the authoritative guarantee.
type Entry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	StudentID  string    `json:"student_id"`
	SessionID  string    `json:"session_id"`
	Status     string    `json:"status"`
	SignedAt   time.Time `json:"signed_at"`
	Department string    `json:"department"`
}

// RosterEntry is an entry joined with the signer's identity for live
// roster display and export.
type RosterEntry struct {
	Entry
	FullName  string `json:"full_name"`
	MatricNo  string `json:"matric_no"`
	Signature string `json:"signature,omitempty"`
}

// HistoryEntry is an entry joined with its session's course for a
// student's own timeline.
type HistoryEntry struct {
	Entry
	CourseCode     string    `json:"course_code"`
	SessionCreated time.Time `json:"session_created_at"`
}

// Ledger is the durable attendance record. Implementations enforce
// UNIQUE(student_id, session_id) and surface constraint failures as
// ErrAlreadySigned / ErrSessionGone; writes publish a change notification
// scoped by session id.
type Ledger interface {
	Insert(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	// Find returns the entry for the pair, or nil when the student has not
	// signed yet.
	Find(ctx context.Context, studentID, sessionID string) (*Entry, error)
	// Void removes a single entry.
	Void(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]RosterEntry, error)
	ListByStudent(ctx context.Context, studentID string) ([]HistoryEntry, error)
}
