package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"minesweeper_webapp/internal/service"
)

// JWT authenticates the request from the Authorization bearer token and
// stores the player identity in the gin context under player_id and
// username.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims, err := service.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("player_id", claims.PlayerID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
