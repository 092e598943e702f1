package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/dineflow/pos-backend/utils"
)

// WebSocketAuthMiddleware authenticates the websocket handshake via a query
// token, since browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("actor_id", claims.ActorID)
		c.Set("role", claims.Role)
		c.Set("outlet_id", claims.OutletID)

		c.Next()
	}
}
