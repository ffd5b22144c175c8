package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendancehub/internal/liveview"
	"attendancehub/internal/session"
)

// LiveSessions streams the caller's department session list over SSE,
// re-sent whenever the change feed reports a session insert/update/delete.
func (h *Handler) LiveSessions(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}

	projector, err := liveview.New(c.Request.Context(), h.feed, h.sessions, h.ledger, p.Department)
	if err != nil {
		writeError(c, err)
		return
	}
	defer projector.Close()

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("sessions", projector.Sessions())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-projector.Updates():
			c.SSEvent("sessions", projector.Sessions())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// LiveRoster streams the roster of one session over SSE. The subscription
// is scoped to the session id and torn down when the client disconnects.
func (h *Handler) LiveRoster(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": "session_id is required"})
		return
	}
	p, ok := h.caller(c)
	if !ok {
		return
	}
	s, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if s.Department != p.Department {
		writeError(c, session.ErrNotFound)
		return
	}

	projector, err := liveview.New(c.Request.Context(), h.feed, h.sessions, h.ledger, p.Department)
	if err != nil {
		writeError(c, err)
		return
	}
	defer projector.Close()

	if err := projector.Select(sessionID); err != nil {
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("roster", projector.Roster())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-projector.Updates():
			c.SSEvent("roster", projector.Roster())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
