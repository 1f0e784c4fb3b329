package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agendagov/internal/auth"
	"agendagov/internal/model"
)

const (
	UserIDKey = "uid"
	RoleKey   = "role"
)

// Auth validates the Authorization: Bearer <jwt> header and stashes the
// caller's id and role in the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || raw == c.GetHeader("Authorization") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token"})
			return
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated caller holds one
// of the given roles. Must run after Auth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func Role(c *gin.Context) model.Role {
	if v, ok := c.Get(RoleKey); ok {
		if r, ok := v.(model.Role); ok {
			return r
		}
	}
	return ""
}
