package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string
	BaseURL     string

	// Store
	StoreBackend  string // redis | sqlite | memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string

	// JWT
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Task processing
	TaskStepDelay     time.Duration
	TaskRetentionDays int

	// Event log
	LogCap         int
	LogKeepCleanup int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		BaseURL:     getEnv("BASE_URL", "https://xuke.ambition.qzz.io"),

		StoreBackend:  getEnv("STORE_BACKEND", "redis"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		SQLitePath:    getEnv("SQLITE_PATH", "xueke.db"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),

		TaskStepDelay:     parseDuration(getEnv("TASK_STEP_DELAY", "2s"), 2*time.Second),
		TaskRetentionDays: parseInt(getEnv("TASK_RETENTION_DAYS", "30"), 30),

		LogCap:         parseInt(getEnv("LOG_CAP", "2000"), 2000),
		LogKeepCleanup: parseInt(getEnv("LOG_KEEP_CLEANUP", "1000"), 1000),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
