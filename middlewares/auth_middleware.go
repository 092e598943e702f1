package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dineflow/pos-backend/utils"
)

// AuthMiddleware validates the bearer token issued by the auth service and
// puts (actor_id, role, outlet_id) on the request context. Every mutating
// endpoint of the core reads the actor from here.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}

		if claims.ActorID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid actor in token"))
			c.Abort()
			return
		}

		c.Set("actor_id", claims.ActorID)
		c.Set("role", claims.Role)
		c.Set("outlet_id", claims.OutletID)

		c.Next()
	}
}
