package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"minesweeper_webapp/internal/command"
	"minesweeper_webapp/internal/config"
	"minesweeper_webapp/internal/http/handlers"
	"minesweeper_webapp/internal/http/middleware"
	"minesweeper_webapp/internal/service"
	"minesweeper_webapp/internal/store"
	"minesweeper_webapp/internal/ws"
)

// RegisterRoutes mounts the full API surface on the gin engine. All game
// state flows through the session service and dispatcher; handlers never
// touch the store directly.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, st store.DocumentStore, sessions *service.SessionService, dispatcher *command.Dispatcher, hub *ws.Hub, version string) {
	h := handlers.NewHandler(sessions, dispatcher, cfg.BotToken)
	healthHandler := handlers.NewHealthHandler(st, version)

	r.Use(middleware.Metrics())

	// Health checks and metrics stay outside the rate limiter.
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", healthHandler.Health)
	v1.GET("/healthz", healthHandler.Liveness)
	v1.GET("/readyz", healthHandler.Readiness)

	v1.Use(middleware.RedisRateLimit(cfg.RateLimitPerWindow, cfg.RateWindow))

	v1.POST("/auth/login", middleware.SimpleRateLimit(10, cfg.RateWindow), h.Login)
	v1.POST("/auth/telegram", middleware.SimpleRateLimit(10, cfg.RateWindow), h.TelegramLogin)
	v1.POST("/instances", middleware.JWT(), h.CreateInstance)

	inst := v1.Group("/instances/:id")
	{
		inst.GET("/state", h.State)
		inst.GET("/leaderboard", h.InstanceLeaderboard)
		inst.GET("/matches", h.InstanceMatches)

		moves := inst.Group("")
		moves.Use(middleware.JWT(), middleware.PlayerRateLimit(cfg.RateLimitPerWindow, cfg.RateWindow))
		{
			moves.POST("/setup", h.Setup)
			moves.POST("/start", h.Start)
			moves.POST("/reveal", h.Reveal)
			moves.POST("/flag", h.Flag)
			moves.POST("/hint", h.Hint)
			moves.POST("/navigate", h.Navigate)
			moves.POST("/command", h.Command)
		}
	}

	// WebSocket state feed
	r.GET("/ws", ws.HandleWS(hub, sessions))
}
