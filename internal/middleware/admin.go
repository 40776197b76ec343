package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/pkg/response"
)

// RequireAdmin gates admin routes. The actor passes when their ID is in the
// configured admin user list, or when their live member roles intersect the
// admin role set. Roles are fetched from the gateway per request, not cached.
func RequireAdmin(gateway platform.Gateway, adminRoles eligibility.RoleSet, adminUsers []string) gin.HandlerFunc {
	users := make(map[string]struct{}, len(adminUsers))
	for _, id := range adminUsers {
		users[id] = struct{}{}
	}
	return func(c *gin.Context) {
		actorID := c.GetString(ContextActorID)
		if actorID == "" {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := users[actorID]; ok {
			c.Next()
			return
		}
		member, err := gateway.GetMember(c.Request.Context(), actorID)
		if err != nil || member == nil {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		if !adminRoles.ContainsAny(member.RoleIDs) {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
