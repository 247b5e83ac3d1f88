package middleware

import (
	"net/http"
	"strings"

	"rentals/internal/pkg/jwt"
	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// JWTAuth verifies the bearer token and stores user_id (string) and role in
// the gin context.
func JWTAuth(j *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header must be 'Bearer <token>'")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Empty token")
			return
		}

		claims, err := j.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID())
		c.Set("role", claims.Role)

		c.Next()
	}
}
