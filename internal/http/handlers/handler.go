package handlers

import (
	"github.com/gin-gonic/gin"

	"minesweeper_webapp/internal/command"
	"minesweeper_webapp/internal/service"
)

// Handler carries the two entry points into the game: the interactive
// session service and the text-command dispatcher. BotToken verifies
// Telegram WebApp logins and may be empty.
type Handler struct {
	Sessions   *service.SessionService
	Dispatcher *command.Dispatcher
	BotToken   string
}

func NewHandler(sessions *service.SessionService, dispatcher *command.Dispatcher, botToken string) *Handler {
	return &Handler{Sessions: sessions, Dispatcher: dispatcher, BotToken: botToken}
}

// actorFrom reads the player identity the JWT middleware stored.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:       c.GetString("player_id"),
		Username: c.GetString("username"),
	}
}
