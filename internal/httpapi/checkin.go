package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"attendancehub/internal/attendance"
	"attendancehub/internal/auth"
	"attendancehub/internal/deeplink"
	"attendancehub/internal/session"
)

type checkInRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Pin       string `json:"pin"`
}

// SubmitCheckIn records attendance for the caller. An omitted pin falls
// back to the one staged by a /join deep link, consumed on this attempt
// whether or not it matches.
func (h *Handler) SubmitCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
		return
	}
	claims := auth.FromContext(c)

	pin := req.Pin
	if pin == "" {
		staged, err := h.stager.Take(c.Request.Context(), claims.Subject)
		if err != nil {
			log.Printf("staged pin lookup failed: %v", err)
		}
		pin = staged
	}

	entry, err := h.coordinator.Submit(c.Request.Context(), claims.Subject, req.SessionID, pin)
	if err != nil {
		checkinAttempts.WithLabelValues(outcomeLabel(err)).Inc()
		writeError(c, err)
		return
	}
	checkinAttempts.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, entry)
}

// VoidCheckIn removes a single entry from the roster.
func (h *Handler) VoidCheckIn(c *gin.Context) {
	claims := auth.FromContext(c)
	if err := h.coordinator.Void(c.Request.Context(), c.Param("id"), claims.Subject); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Join resolves a QR deep link. An authenticated student gets the PIN
// staged for their next check-in; anyone else is told to log in first.
func (h *Handler) Join(c *gin.Context) {
	pin, ok := deeplink.ParsePath("/join/" + c.Param("pin"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": "malformed join link"})
		return
	}

	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		claims, err := auth.Parse(strings.TrimSpace(authz[len("bearer "):]), h.cfg.JWTSigningKey, h.cfg.JWTIssuer)
		if err == nil && claims.Role != auth.RoleHOC {
			if err := h.stager.Stage(c.Request.Context(), claims.Subject, pin); err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"staged": true, "pin": pin})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"staged": false, "pin": pin, "login_required": true})
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, attendance.ErrInvalidPin):
		return "invalid_pin"
	case errors.Is(err, attendance.ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, attendance.ErrSessionGone):
		return "session_gone"
	case errors.Is(err, attendance.ErrAlreadySigned):
		return "already_signed"
	case errors.Is(err, session.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
