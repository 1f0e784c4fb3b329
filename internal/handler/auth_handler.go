package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendagov/internal/auth"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	u, err := h.svc.UserByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		// same answer for unknown user and wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	rawRefresh, tokenHash, err := auth.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if _, err := h.tokens.Create(c.Request.Context(), u.ID, tokenHash, time.Now().Add(refreshTokenTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	setRefreshCookie(c, rawRefresh, refreshTokenTTL)
	c.JSON(http.StatusOK, gin.H{
		"token": tok,
		"user":  toUserResponse(u),
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	raw, err := c.Cookie("refresh_token")
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no refresh token"})
		return
	}

	rt, err := h.tokens.GetByHash(c.Request.Context(), auth.HashRefreshToken(raw))
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	u, err := h.svc.User(c.Request.Context(), rt.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	newID := uuid.New().String()
	if err := h.tokens.Rotate(c.Request.Context(), rt.ID, newID, u.ID, newHash, time.Now().Add(refreshTokenTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	setRefreshCookie(c, newRaw, refreshTokenTTL)
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

func (h *Handler) Logout(c *gin.Context) {
	if raw, err := c.Cookie("refresh_token"); err == nil && raw != "" {
		if rt, err := h.tokens.GetByHash(c.Request.Context(), auth.HashRefreshToken(raw)); err == nil {
			_ = h.tokens.RevokeAll(c.Request.Context(), rt.UserID)
		}
	}
	setRefreshCookie(c, "", -time.Hour)
	c.Status(http.StatusNoContent)
}

func setRefreshCookie(c *gin.Context, value string, ttl time.Duration) {
	c.SetCookie("refresh_token", value, int(ttl.Seconds()), "/auth", "", false, true)
}
