package ws

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"minesweeper_webapp/internal/logger"
	"minesweeper_webapp/internal/service"
)

// HandleWS upgrades the connection and subscribes it to an instance's
// state frames. Auth rides in on the token query parameter since
// browsers cannot set headers on websocket dials.
func HandleWS(hub *Hub, sessions *service.SessionService) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		instance := c.Query("instance")
		if instance == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "instance required"})
			return
		}

		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := service.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Snapshot before the upgrade so a brand-new watcher starts in sync.
		frame, err := sessions.StateFrame(c.Request.Context(), instance)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state unavailable"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(hub, conn, instance, claims.PlayerID)
		if frame != nil {
			client.Send <- frame
		}
		go client.Run()
	}
}
