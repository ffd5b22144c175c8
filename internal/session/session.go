package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrValidation means the caller supplied bad input; retrying without
	// correcting it will not help.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the session no longer exists.
	ErrNotFound = errors.New("session not found")
	// ErrForbidden means the requester does not own the session.
	ErrForbidden = errors.New("not the owning HOC")
)

// Session is an attendance window gated by a 6-digit join code. The code is
// not guaranteed unique across simultaneously active sessions; collisions
// are accepted.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CourseCode string    `json:"course_code"`
	UniqueCode string    `json:"unique_code"`
	Department string    `json:"department"`
	HOCID      string    `json:"hoc_id"`
	IsActive   bool      `json:"is_active"`
}

// Store is the durable session record. Implementations publish a change
// notification scoped by department after every successful write.
type Store interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	SetActive(ctx context.Context, id string, active bool) error
	// Delete removes the session and cascades to its attendance entries.
	Delete(ctx context.Context, id string) error
	ListByDepartment(ctx context.Context, department string) ([]Session, error)
	// LatestActiveByHOC returns the most recently created active session
	// owned by the HOC, or nil when there is none.
	LatestActiveByHOC(ctx context.Context, hocID string) (*Session, error)
}
