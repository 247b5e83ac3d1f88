package middleware

import (
	"net/http"

	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole passes when the token role is one of roles.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Role not found in token")
			return
		}

		if _, ok := allowed[role]; !ok {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

