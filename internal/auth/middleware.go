package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// viewerKey is the gin context key holding the authenticated profile id
const viewerKey = "viewer_id"

// Middleware extracts the viewer identity from the Authorization header.
// A missing or invalid token does not abort the request; read-only methods
// are usable anonymously and mutating methods report Unauthenticated
// themselves when the viewer is empty.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if profileID, err := a.VerifyToken(token); err == nil {
				c.Set(viewerKey, profileID)
			}
		}
		c.Next()
	}
}

// Viewer returns the authenticated profile id, empty when anonymous
func Viewer(c *gin.Context) string {
	if v, ok := c.Get(viewerKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
