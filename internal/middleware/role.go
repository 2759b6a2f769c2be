package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/domain"
	"tutorhub/internal/pkg/response"
	"tutorhub/internal/session"
)

// RequireRole ensures that the authenticated user has one of the roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromGin(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}

		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Access denied: insufficient permissions")
	}
}

// TeacherOnly middleware requires teacher role
func TeacherOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleTeacher)
}
