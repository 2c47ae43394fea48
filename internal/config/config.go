package config

import (
	"os"
	"strconv"
	"time"

	"diaries-qc/common/config"
)

// Config diaries-qc process configuration
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig

	QC struct {
		ProjectID     int64  // reporting project (households.project_id)
		Workers       int    // parallel interview evaluations
		HistoryDays   int    // look-back before the window when searching previous interviews
		ReferenceFile string // optional YAML replacing the embedded reference data
	}

	// Publish report publication to Redis for the dashboard
	Publish struct {
		Enabled bool
		TTL     time.Duration
	}

	Metrics struct {
		PushgatewayURL string // empty disables pushing
		Job            string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database = config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "fd_production",
		SSLMode:  "disable",
		MaxConns: 4,
		MaxIdle:  2,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = config.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.QC.ProjectID = int64(parseInt(getEnv("QC_PROJECT_ID", "129"), 129))
	cfg.QC.Workers = parseInt(getEnv("QC_WORKERS", "8"), 8)
	if cfg.QC.Workers < 1 {
		cfg.QC.Workers = 1
	}
	cfg.QC.HistoryDays = parseInt(getEnv("QC_HISTORY_DAYS", "365"), 365)
	cfg.QC.ReferenceFile = getEnv("QC_REFERENCE_FILE", "")

	cfg.Publish.Enabled = getEnv("QC_PUBLISH_ENABLED", "false") == "true"
	cfg.Publish.TTL = time.Duration(parseInt(getEnv("QC_PUBLISH_TTL", "86400"), 86400)) * time.Second

	cfg.Metrics.PushgatewayURL = getEnv("QC_PUSHGATEWAY_URL", "")
	cfg.Metrics.Job = getEnv("QC_PUSHGATEWAY_JOB", "diaries_qc")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
