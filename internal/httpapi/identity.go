package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendancehub/internal/auth"
	"attendancehub/internal/profile"
)

type registerRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	MatricNo   string `json:"matric_no" binding:"required"`
	Level      string `json:"level"`
	Department string `json:"department" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
	IsHOC      bool   `json:"is_hoc"`
	HOCSecret  string `json:"hoc_secret"`
}

// Register creates a profile. Registering as HOC requires the shared HOC
// secret; the signature blob is set once here and never changed.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
		return
	}

	role := profile.RoleStudent
	if req.IsHOC {
		if req.HOCSecret != h.cfg.HOCSecret {
			c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": "invalid HOC secret"})
			return
		}
		role = profile.RoleHOC
	}

	p, err := h.profiles.Create(c.Request.Context(), profile.Profile{
		FullName:   req.FullName,
		MatricNo:   req.MatricNo,
		Level:      req.Level,
		Department: req.Department,
		Role:       role,
		Signature:  req.Signature,
	}, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type loginRequest struct {
	MatricNo string `json:"matric_no" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges matric number and password for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
		return
	}

	p, err := h.profiles.GetByCredentials(c.Request.Context(), req.MatricNo, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	tokens, err := auth.Issue(p.ID, p.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":       p,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateLevel changes the caller's self-service level field.
func (h *Handler) UpdateLevel(c *gin.Context) {
	var req struct {
		Level string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	if err := h.profiles.UpdateLevel(c.Request.Context(), claims.Subject, req.Level); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": req.Level})
}

// Directory lists the caller's department registry.
func (h *Handler) Directory(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	students, err := h.profiles.ListStudentsByDepartment(c.Request.Context(), p.Department)
	if err != nil {
		writeError(c, err)
		return
	}
	if students == nil {
		students = []profile.Profile{}
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}
