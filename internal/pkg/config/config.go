package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	CollectorAddr string `env:"COLLECTOR_ADDR" envDefault:":8080"`
	AdminAddr     string `env:"ADMIN_ADDR" envDefault:":9090"`

	RedisAddr   string `env:"REDIS_ADDR,required"`
	PostgresURL string `env:"POSTGRES_URL,required"`

	MaxRecordSize int64 `env:"MAX_RECORD_SIZE_BYTES" envDefault:"1048576"` // 1MB

	WALPath        string `env:"WAL_PATH" envDefault:"wal"`
	WALSegmentSize int64  `env:"WAL_SEGMENT_SIZE_BYTES" envDefault:"104857600"` // 100MB
	WALMaxDiskSize int64  `env:"WAL_MAX_DISK_SIZE_BYTES" envDefault:"1073741824"` // 1GB

	RedisDLQStream string        `env:"REDIS_DLQ_STREAM" envDefault:"rtc_event_records_dlq"`
	APIKeyCacheTTL time.Duration `env:"API_KEY_CACHE_TTL" envDefault:"5m"`

	RTCPCaptureBytes int `env:"RTCP_CAPTURE_BYTES" envDefault:"128"`
	HistoryMaxEvents int `env:"HISTORY_MAX_EVENTS" envDefault:"10000"`

	IngestRateLimit float64 `env:"INGEST_RATE_LIMIT" envDefault:"0"` // 0 disables
	IngestRateBurst int     `env:"INGEST_RATE_BURST" envDefault:"100"`

	PersistFilterFile string `env:"PERSIST_FILTER_FILE"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
