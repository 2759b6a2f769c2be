package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/pkg/response"
	"tutorhub/internal/session"
)

// JWTAuth requires a valid bearer token and attaches the caller's session.
func JWTAuth(auth *session.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Empty token")
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), tokenStr)
		switch {
		case errors.Is(err, session.ErrRevoked):
			response.Abort(c, http.StatusUnauthorized, "SESSION_REVOKED", "Session has ended")
			return
		case errors.Is(err, session.ErrInvalid):
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		case err != nil:
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Failed to verify session")
			return
		}

		session.Attach(c, sess)
		c.Next()
	}
}
