package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendancehub/internal/attendance"
	"attendancehub/internal/auth"
	"attendancehub/internal/session"
)

type openSessionRequest struct {
	CourseCode string `json:"course_code"`
}

// OpenSession launches a new attendance window for the caller's department.
func (h *Handler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
		return
	}
	p, ok := h.caller(c)
	if !ok {
		return
	}
	s, err := h.controller.Open(c.Request.Context(), req.CourseCode, p.Department, p.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	sessionsOpened.Inc()
	c.JSON(http.StatusCreated, s)
}

// SetSessionActive flips the portal open or closed.
func (h *Handler) SetSessionActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	if err := h.controller.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive, claims.Subject); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "is_active": *req.IsActive})
}

// DeleteSession destroys a session and all of its attendance entries. The
// irreversible step demands an explicit confirm flag from the boundary.
func (h *Handler) DeleteSession(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "confirm_required", "error": "pass confirm=true to delete the session and all its attendance logs"})
		return
	}
	claims := auth.FromContext(c)
	if err := h.controller.Delete(c.Request.Context(), c.Param("id"), claims.Subject); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResumeSession restores the caller's most recent active session, if any.
func (h *Handler) ResumeSession(c *gin.Context) {
	claims := auth.FromContext(c)
	s, err := h.controller.ResumeActive(c.Request.Context(), claims.Subject)
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s})
}

// ListSessions returns the caller's department sessions, newest first.
func (h *Handler) ListSessions(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	sessions, err := h.sessions.ListByDepartment(c.Request.Context(), p.Department)
	if err != nil {
		writeError(c, err)
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Roster returns the attendance entries for a session, newest first.
// Sessions outside the caller's department are not visible.
func (h *Handler) Roster(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if s.Department != p.Department {
		writeError(c, session.ErrNotFound)
		return
	}
	roster, err := h.ledger.ListBySession(c.Request.Context(), s.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if roster == nil {
		roster = []attendance.RosterEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": roster, "count": len(roster)})
}

// MyHistory returns the caller's own attendance timeline.
func (h *Handler) MyHistory(c *gin.Context) {
	claims := auth.FromContext(c)
	history, err := h.ledger.ListByStudent(c.Request.Context(), claims.Subject)
	if err != nil {
		writeError(c, err)
		return
	}
	if history == nil {
		history = []attendance.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": history})
}
