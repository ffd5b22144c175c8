package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"attendancehub/internal/attendance"
	"attendancehub/internal/auth"
	"attendancehub/internal/config"
	"attendancehub/internal/deeplink"
	"attendancehub/internal/notify"
	"attendancehub/internal/profile"
	"attendancehub/internal/session"
	"attendancehub/internal/store"
)

// Handler carries the wired services behind the HTTP surface.
type Handler struct {
	cfg         config.App
	profiles    profile.Directory
	sessions    session.Store
	ledger      attendance.Ledger
	controller  *session.Controller
	coordinator *attendance.Coordinator
	stager      deeplink.Stager
	feed        notify.Feed
}

// New creates a handler.
func New(
	cfg config.App,
	profiles profile.Directory,
	sessions session.Store,
	ledger attendance.Ledger,
	controller *session.Controller,
	coordinator *attendance.Coordinator,
	stager deeplink.Stager,
	feed notify.Feed,
) *Handler {
	return &Handler{
		cfg:         cfg,
		profiles:    profiles,
		sessions:    sessions,
		ledger:      ledger,
		controller:  controller,
		coordinator: coordinator,
		stager:      stager,
		feed:        feed,
	}
}

// Routes registers every endpoint on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	r.POST("/v1/register", h.Register)
	r.POST("/v1/login", h.Login)
	r.GET("/join/:pin", h.Join)

	authed := r.Group("/v1", auth.RequireAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	authed.GET("/me", h.Me)
	authed.PATCH("/me/level", h.UpdateLevel)
	authed.GET("/sessions", h.ListSessions)
	authed.GET("/sessions/:id/roster", h.Roster)
	authed.GET("/history", h.MyHistory)
	authed.POST("/checkins", h.SubmitCheckIn)
	authed.GET("/live/sessions", h.LiveSessions)
	authed.GET("/live/roster", h.LiveRoster)
	authed.GET("/export/sessions.csv", h.ExportSessions)
	authed.GET("/export/sessions/:id/roster.csv", h.ExportRoster)

	hoc := authed.Group("", auth.RequireRole(auth.RoleHOC))
	hoc.POST("/sessions", h.OpenSession)
	hoc.PATCH("/sessions/:id", h.SetSessionActive)
	hoc.DELETE("/sessions/:id", h.DeleteSession)
	hoc.GET("/sessions/resume", h.ResumeSession)
	hoc.GET("/sessions/:id/qr", h.SessionQR)
	hoc.DELETE("/checkins/:id", h.VoidCheckIn)
	hoc.GET("/directory", h.Directory)
}

// caller loads the authenticated caller's profile; claims alone do not
// carry the department.
func (h *Handler) caller(c *gin.Context) (profile.Profile, bool) {
	claims := auth.FromContext(c)
	p, err := h.profiles.GetByID(c.Request.Context(), claims.Subject)
	if err != nil {
		writeError(c, err)
		return profile.Profile{}, false
	}
	return p, true
}

// writeError maps domain errors to distinct status codes and machine
// readable reasons; anything unexpected collapses to a generic failure.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
	case errors.Is(err, attendance.ErrInvalidPin):
		c.JSON(http.StatusForbidden, gin.H{"code": "invalid_pin", "error": "the submitted PIN does not match this session"})
	case errors.Is(err, attendance.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"code": "session_closed", "error": "this portal has been closed by the HOC"})
	case errors.Is(err, attendance.ErrSessionGone):
		c.JSON(http.StatusGone, gin.H{"code": "session_gone", "error": "this session no longer exists"})
	case errors.Is(err, attendance.ErrAlreadySigned):
		c.JSON(http.StatusConflict, gin.H{"code": "already_signed", "error": "you have already signed for this session"})
	case errors.Is(err, attendance.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "attendance entry not found"})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "session not found"})
	case errors.Is(err, session.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": "only the owning HOC may do that"})
	case errors.Is(err, profile.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "bad_credentials", "error": "login failed"})
	case errors.Is(err, profile.ErrMatricTaken):
		c.JSON(http.StatusConflict, gin.H{"code": "matric_taken", "error": "matric number already registered"})
	case errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "profile not found"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "store_unavailable", "error": "store unavailable, retry shortly"})
	default:
		log.Printf("unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "error": "operation failed"})
	}
}

// SessionQR renders the join deep link as a PNG for projection. Only the
// owning HOC may fetch it, since it carries the live PIN.
func (h *Handler) SessionQR(c *gin.Context) {
	claims := auth.FromContext(c)
	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if s.HOCID != claims.Subject {
		writeError(c, session.ErrForbidden)
		return
	}
	png, err := qrcode.Encode(h.cfg.BaseURL+"/join/"+s.UniqueCode, qrcode.Medium, 256)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
