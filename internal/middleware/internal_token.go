package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// InternalTokenAuth protects internal endpoints using a static bearer token.
// An empty expected token disables the endpoints.
func InternalTokenAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			logAuthFailure(c, http.StatusForbidden, "disabled")
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Internal API is disabled")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logAuthFailure(c, http.StatusUnauthorized, "missing_auth")
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logAuthFailure(c, http.StatusUnauthorized, "invalid_auth_format")
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
			logAuthFailure(c, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logAuthFailure(c *gin.Context, status int, reason string) {
	log.Printf("internal_auth status=%d request_id=%s path=%s reason=%s", status, requestID(c), c.Request.URL.Path, reason)
}
