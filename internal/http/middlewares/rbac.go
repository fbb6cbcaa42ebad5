package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole is a per-route allow-list. It runs after RequireAuth:
// no identity means 401, wrong role means 403.
func (m *AuthMiddleware) RequireRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))

	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		ident, ok := IdentityFromContext(c)

		if !ok || ident.Role == "" {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if _, ok := allowedSet[ident.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role",
				},
			})
			return
		}
		c.Next()
	}
}
