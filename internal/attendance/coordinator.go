package attendance

import (
	"context"
	"errors"
	"time"

	"attendancehub/internal/session"
)

// Coordinator validates a submitted PIN against the live session state and
// either commits a new entry or reports a precise failure reason. Each
// (student, session) pair moves UNSIGNED -> SIGNED exactly once; the ledger's
// uniqueness constraint makes that hold under concurrent submissions.
type Coordinator struct {
	sessions session.Store
	ledger   Ledger
	now      func() time.Time
}

// NewCoordinator creates a coordinator.
func NewCoordinator(sessions session.Store, ledger Ledger) *Coordinator {
	return &Coordinator{sessions: sessions, ledger: ledger, now: time.Now}
}

// Submit records attendance for the student against the session.
//
// The session is re-read by id rather than trusting any client-held copy,
// so a deletion between PIN distribution and submission surfaces as
// ErrSessionGone and a just-closed portal as ErrSessionClosed. The duplicate
// lookup is an optimistic pre-check only; the authoritative guard is the
// store constraint, whose violation Insert reports as ErrAlreadySigned.
func (c *Coordinator) Submit(ctx context.Context, studentID, sessionID, pin string) (Entry, error) {
	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Entry{}, ErrSessionGone
		}
		return Entry{}, err
	}
	if pin != s.UniqueCode {
		return Entry{}, ErrInvalidPin
	}
	if !s.IsActive {
		return Entry{}, ErrSessionClosed
	}

	existing, err := c.ledger.Find(ctx, studentID, sessionID)
	if err != nil {
		return Entry{}, err
	}
	if existing != nil {
		return Entry{}, ErrAlreadySigned
	}

	return c.ledger.Insert(ctx, Entry{
		StudentID:  studentID,
		SessionID:  sessionID,
		Status:     StatusPresent,
		SignedAt:   c.now().UTC(),
		Department: s.Department,
	})
}

// Void removes a single entry on behalf of the HOC owning its session.
func (c *Coordinator) Void(ctx context.Context, entryID, requesterID string) error {
	e, err := c.ledger.Get(ctx, entryID)
	if err != nil {
		return err
	}
	s, err := c.sessions.Get(ctx, e.SessionID)
	if err != nil {
		return err
	}
	if s.HOCID != requesterID {
		return session.ErrForbidden
	}
	return c.ledger.Void(ctx, entryID)
}
