package session

import (
	"context"
	"fmt"
	"strings"

	"attendancehub/internal/pin"
)

// Controller orchestrates session lifecycle transitions and enforces that
// only the owning HOC mutates a session.
type Controller struct {
	store Store
	pins  pin.Generator
}

// NewController creates a controller.
func NewController(store Store, pins pin.Generator) *Controller {
	return &Controller{store: store, pins: pins}
}

// Open starts a new attendance window for the course. The course code is
// uppercased with whitespace stripped ("eec 201" -> "EEC201"); a fresh join
// code is drawn.
func (c *Controller) Open(ctx context.Context, courseCode, department, hocID string) (Session, error) {
	courseCode = strings.ToUpper(strings.Join(strings.Fields(courseCode), ""))
	if courseCode == "" {
		return Session{}, fmt.Errorf("%w: course code is required", ErrValidation)
	}
	code, err := c.pins.Generate()
	if err != nil {
		return Session{}, err
	}
	return c.store.Create(ctx, Session{
		CourseCode: courseCode,
		UniqueCode: code,
		Department: department,
		HOCID:      hocID,
		IsActive:   true,
	})
}

// SetActive flips the portal open or closed. Re-activating an already
// active session is a no-op with respect to entry count and join code.
func (c *Controller) SetActive(ctx context.Context, id string, active bool, requesterID string) error {
	if err := c.authorize(ctx, id, requesterID); err != nil {
		return err
	}
	return c.store.SetActive(ctx, id, active)
}

// Close ends the session from the HOC's perspective. Same data effect as
// SetActive(false).
func (c *Controller) Close(ctx context.Context, id, requesterID string) error {
	return c.SetActive(ctx, id, false, requesterID)
}

// Delete destroys the session and every attendance entry referencing it.
// Irreversible; the boundary is expected to confirm before calling.
func (c *Controller) Delete(ctx context.Context, id, requesterID string) error {
	if err := c.authorize(ctx, id, requesterID); err != nil {
		return err
	}
	return c.store.Delete(ctx, id)
}

// ResumeActive restores an in-progress session after a reconnect: the most
// recently created active session owned by hocID, or nil.
func (c *Controller) ResumeActive(ctx context.Context, hocID string) (*Session, error) {
	return c.store.LatestActiveByHOC(ctx, hocID)
}

func (c *Controller) authorize(ctx context.Context, id, requesterID string) error {
	s, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.HOCID != requesterID {
		return ErrForbidden
	}
	return nil
}
