package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"minesweeper_webapp/internal/logger"
	"minesweeper_webapp/internal/service"
)

type LoginRequest struct {
	Username string `json:"username"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// Login issues a token for a username. There is no account store: the
// player id is the lowercased username, so the same name always maps to
// the same scores.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 1-32 letters, digits, _ or -"})
		return
	}

	playerID := strings.ToLower(username)
	token, err := service.GenerateToken(playerID, username)
	if err != nil {
		logger.Error("token generation failed", "player", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"player_id": playerID,
		"username":  username,
	})
}

type TelegramLoginRequest struct {
	InitData string `json:"init_data"`
}

// TelegramLogin verifies WebApp init data and issues the same token as
// Login. The player id carries a tg: prefix so Telegram identities never
// collide with username logins, and match the ids the bot uses.
func (h *Handler) TelegramLogin(c *gin.Context) {
	if h.BotToken == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telegram login disabled"})
		return
	}

	var req TelegramLoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := service.VerifyTelegramInitData(req.InitData, h.BotToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram credentials"})
		return
	}

	playerID := fmt.Sprintf("tg:%d", user.ID)
	username := user.Username
	if username == "" {
		username = user.FirstName
	}

	token, err := service.GenerateToken(playerID, username)
	if err != nil {
		logger.Error("token generation failed", "player", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"player_id": playerID,
		"username":  username,
	})
}
