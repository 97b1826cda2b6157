package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minesweeper_webapp/internal/bot"
	"minesweeper_webapp/internal/command"
	"minesweeper_webapp/internal/config"
	"minesweeper_webapp/internal/db"
	"minesweeper_webapp/internal/game"
	httpServer "minesweeper_webapp/internal/http"
	"minesweeper_webapp/internal/http/middleware"
	"minesweeper_webapp/internal/logger"
	"minesweeper_webapp/internal/repository"
	"minesweeper_webapp/internal/service"
	"minesweeper_webapp/internal/store"
	"minesweeper_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database unavailable", "error", err)
		}
		defer pool.Close()
	}

	var st store.DocumentStore
	switch cfg.StoreBackend {
	case "postgres":
		st = store.NewPostgresStore(pool)
	case "memory":
		st = store.NewMemoryStore()
	default:
		st = store.NewRedisStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	defer st.Close()
	logger.Info("document store ready", "backend", cfg.StoreBackend)

	// Match history lives in Postgres regardless of the document backend.
	var archive repository.MatchArchive
	if pool != nil {
		archive = repository.NewMatchHistoryRepository(pool)
	} else {
		logger.Warn("no DATABASE_URL, match history disabled")
	}

	engine := game.NewEngine(nil)
	hub := ws.NewHub()
	sessions := service.NewSessionService(st, engine, archive, hub, cfg.RevealStepDelay)
	dispatcher := command.NewDispatcher(st, engine, archive)

	ticker := service.NewTicker(sessions, cfg.TickInterval, cfg.PollInterval)
	go ticker.Run()

	var commandBot *bot.CommandBot
	if cfg.BotToken != "" {
		var err error
		commandBot, err = bot.NewCommandBot(cfg.BotToken, dispatcher)
		if err != nil {
			logger.Fatal("bot authorization failed", "error", err)
		}
		go commandBot.Start()
	} else {
		logger.Info("BOT_TOKEN not set, telegram bot disabled")
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, cfg, st, sessions, dispatcher, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ticker.Stop()
	if commandBot != nil {
		commandBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
