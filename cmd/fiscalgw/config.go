package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPAddr    string     // "127.0.0.1:8080"
	UpstreamURL string     // overrides the configured/default upstream base URL
	ConfigFile  string     // path to fiscalgw.yaml
	LogLevel    slog.Level // slog level
	DevMode     bool       // include stack traces in 500 bodies
}

func loadConfig() *Config {
	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:    envOr("FISCALGW_HTTP_ADDR", "127.0.0.1:8080"),
		UpstreamURL: envOr("FISCALGW_MCP_URL", ""),
		ConfigFile:  envOr("FISCALGW_CONFIG", "fiscalgw.yaml"),
		LogLevel:    parseLogLevel(envOr("FISCALGW_LOG_LEVEL", "info")),
		DevMode:     envOr("FISCALGW_DEV", "") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
