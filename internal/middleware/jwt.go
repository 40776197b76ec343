package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/omc-club/registration/internal/auth"
	"github.com/omc-club/registration/pkg/response"
)

const (
	// ContextActorID is the key for the acting member's ID in gin context.
	ContextActorID = "actor_id"
	// ContextDisplayName is the key for the acting member's display name.
	ContextDisplayName = "display_name"
)

// JWT returns a middleware that validates the gateway-minted service token
// and sets the actor identity in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextActorID, claims.ActorID)
		c.Set(ContextDisplayName, claims.DisplayName)
		c.Next()
	}
}
