package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendancehub/internal/export"
	"attendancehub/internal/session"
)

// ExportSessions downloads the caller's department session history as CSV.
func (h *Handler) ExportSessions(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	sessions, err := h.sessions.ListByDepartment(c.Request.Context(), p.Department)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := "Session_History_" + p.Department + "_" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteSessionHistory(c.Writer, sessions); err != nil {
		_ = c.Error(err)
	}
}

// ExportRoster downloads one session's roster as CSV. Sessions outside the
// caller's department are not visible.
func (h *Handler) ExportRoster(c *gin.Context) {
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

	c.Header("Content-Disposition", `attachment; filename="`+s.CourseCode+`_Attendance_Registry.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteRoster(c.Writer, roster); err != nil {
		_ = c.Error(err)
	}
}
