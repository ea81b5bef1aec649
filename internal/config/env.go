package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over .env entries (godotenv does not overwrite).
//
// Recognized variables:
//
//	DATABASE_DSN                    PostgreSQL DSN
//	NOTIFY_CHANNEL                  LISTEN/NOTIFY channel name
//	WORKER_COUNT                    worker pool size
//	FETCH_RETRY_ATTEMPTS            visibility-race retry attempts
//	FETCH_RETRY_DELAY_MS            delay between retries, milliseconds
//	LISTENER_RECONNECT_DELAY_MS     listener re-subscribe pause, milliseconds
//	METRICS_ADDR                    metrics/health bind address
func parseEnv(config *Config) {
	_ = godotenv.Load(".env")

	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("NOTIFY_CHANNEL"); v != "" {
		config.Channel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		config.MetricsAddr = v
	}
	if n, ok := envInt("WORKER_COUNT"); ok && n > 0 {
		config.WorkerCount = n
	}
	if n, ok := envInt("FETCH_RETRY_ATTEMPTS"); ok && n >= 0 {
		config.FetchRetryAttempts = n
	}
	if n, ok := envInt("FETCH_RETRY_DELAY_MS"); ok && n > 0 {
		config.FetchRetryDelay = time.Duration(n) * time.Millisecond
	}
	if n, ok := envInt("LISTENER_RECONNECT_DELAY_MS"); ok && n > 0 {
		config.ReconnectDelay = time.Duration(n) * time.Millisecond
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
