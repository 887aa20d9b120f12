package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/davidting0918/VegaExchange/internal/auth"
)

const userIDContextKey = "user_id"

// requireAuth rejects a request with no resolvable user id. Every trading
// endpoint in spec §6 requires a caller identity.
func requireAuth(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := v.VerifyBearer(c.GetHeader("Authorization"))
		if err != nil {
			Fail(c, 401, "missing or invalid bearer token")
			c.Abort()
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	v, _ := c.Get(userIDContextKey)
	s, _ := v.(string)
	return s
}
