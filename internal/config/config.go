package config

import (
	"os"
	"strconv"
	"time"

	"minesweeper_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	LogLevel string
	LogJSON  bool

	JWTSecret string

	// Store selects the document store backend: redis, postgres or memory.
	StoreBackend string
	RedisAddr    string
	RedisPass    string
	RedisDB      int
	DatabaseURL  string

	BotToken string

	// Interactive session timers
	TickInterval    time.Duration
	PollInterval    time.Duration
	RevealStepDelay time.Duration

	// Rate limiting for mutating game endpoints
	RateLimitPerWindow int
	RateWindow         time.Duration
}

// Load reads configuration from the environment (.env honored if present).
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	backend := getEnv("STORE_BACKEND", "redis")
	switch backend {
	case "redis", "postgres", "memory":
	default:
		logger.Fatal("invalid STORE_BACKEND", "value", backend)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if backend == "postgres" && dbURL == "" {
		logger.Fatal("STORE_BACKEND=postgres requires DATABASE_URL")
	}

	return &Config{
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnv("LOG_JSON", "false") == "true",

		JWTSecret: jwtSecret,

		StoreBackend: backend,
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		DatabaseURL:  dbURL,

		BotToken: os.Getenv("BOT_TOKEN"),

		TickInterval:    getEnvDuration("TICK_INTERVAL", time.Second),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 2*time.Second),
		RevealStepDelay: getEnvDuration("REVEAL_STEP_DELAY", 300*time.Millisecond),

		RateLimitPerWindow: getEnvInt("RATE_LIMIT_PER_WINDOW", 120),
		RateWindow:         getEnvDuration("RATE_WINDOW", time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.Warn("invalid int in env, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		logger.Warn("invalid duration in env, using default", "key", key, "value", v, "default", def)
	}
	return def
}
