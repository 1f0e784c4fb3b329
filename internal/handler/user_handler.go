package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendagov/internal/agenda"
	"agendagov/internal/auth"
	"agendagov/internal/middleware"
	"agendagov/internal/model"
)

// User management is admin-only; the router guards the whole group with
// RequireRole(RoleAdmin).

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

type userRequest struct {
	Username           string     `json:"username" binding:"required"`
	Name               string     `json:"name" binding:"required"`
	Password           string     `json:"password"`
	Role               model.Role `json:"role" binding:"required"`
	CanViewCalendarsOf []string   `json:"canViewCalendarsOf"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, name and role required"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too short"})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	u, err := h.svc.CreateUser(c.Request.Context(), agenda.UserDraft{
		Username:           req.Username,
		Name:               req.Name,
		PasswordHash:       hash,
		Role:               req.Role,
		CanViewCalendarsOf: req.CanViewCalendarsOf,
	})
	if err != nil {
		if errors.Is(err, agenda.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		// unique violation = duplicate username
		c.JSON(http.StatusConflict, gin.H{"error": "could not create user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(u)})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, name and role required"})
		return
	}

	draft := agenda.UserDraft{
		Username:           req.Username,
		Name:               req.Name,
		Role:               req.Role,
		CanViewCalendarsOf: req.CanViewCalendarsOf,
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password too short"})
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		draft.PasswordHash = hash
	}

	u, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		switch {
		case errors.Is(err, agenda.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, agenda.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(u)})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	err := h.svc.DeleteUser(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, agenda.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, agenda.ErrSelfDelete):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
	case errors.Is(err, agenda.ErrLastAdmin):
		c.JSON(http.StatusConflict, gin.H{"error": "cannot delete the last admin"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
