package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	S3       S3Config
	CORS     CORSConfig
	Drafts   ServiceEndpointConfig
	Pipeline ServiceEndpointConfig
	Duty     ServiceEndpointConfig
	Xindus   XindusConfig
	Tracker  TrackerConfig
	Bulk     BulkConfig
	Email    EmailConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// S3Config holds AWS S3 settings for batch file staging.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServiceEndpointConfig holds settings for one upstream HTTP service.
type ServiceEndpointConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// XindusConfig holds settings for the Xindus logistics API.
type XindusConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// TrackerConfig holds batch-tracking timing settings.
type TrackerConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	BackoffCapSecs   int `mapstructure:"backoff_cap_secs"`
	MaxPollFailures  int `mapstructure:"max_poll_failures"`
}

// BulkConfig holds bulk-operation throttling settings.
type BulkConfig struct {
	RatePerSec  float64 `mapstructure:"rate_per_sec"`
	Concurrency int     `mapstructure:"concurrency"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ConsoleURL  string `mapstructure:"console_url"`
	Recipients  []string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SHIPDRAFT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHIPDRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "shipdraft-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Upstream service defaults
	v.SetDefault("drafts.base_url", "http://localhost:9001")
	v.SetDefault("drafts.api_key", "")
	v.SetDefault("drafts.timeout_secs", 30)
	v.SetDefault("pipeline.base_url", "http://localhost:9002")
	v.SetDefault("pipeline.api_key", "")
	v.SetDefault("pipeline.timeout_secs", 60)
	v.SetDefault("duty.base_url", "http://localhost:9003")
	v.SetDefault("duty.api_key", "")
	v.SetDefault("duty.timeout_secs", 30)
	v.SetDefault("xindus.base_url", "http://localhost:9004")
	v.SetDefault("xindus.api_key", "")
	v.SetDefault("xindus.timeout_secs", 60)

	// Tracker defaults
	v.SetDefault("tracker.poll_interval_secs", 3)
	v.SetDefault("tracker.backoff_cap_secs", 30)
	v.SetDefault("tracker.max_poll_failures", 10)

	// Bulk operation defaults
	v.SetDefault("bulk.rate_per_sec", 5.0)
	v.SetDefault("bulk.concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@shipdraft.local")
	v.SetDefault("email.from_name", "ShipDraft")
	v.SetDefault("email.console_url", "http://localhost:3000")
	v.SetDefault("email.recipients", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "SHIPDRAFT_SERVER_PORT",
		"server.read_timeout":        "SHIPDRAFT_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "SHIPDRAFT_SERVER_WRITE_TIMEOUT",
		"server.environment":         "SHIPDRAFT_SERVER_ENVIRONMENT",
		"s3.region":                  "SHIPDRAFT_S3_REGION",
		"s3.bucket":                  "SHIPDRAFT_S3_BUCKET",
		"s3.endpoint":                "SHIPDRAFT_S3_ENDPOINT",
		"s3.access_key":              "SHIPDRAFT_S3_ACCESS_KEY",
		"s3.secret_key":              "SHIPDRAFT_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "SHIPDRAFT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":          "SHIPDRAFT_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":       "SHIPDRAFT_CORS_ALLOWED_ORIGINS",
		"drafts.base_url":            "SHIPDRAFT_DRAFTS_BASE_URL",
		"drafts.api_key":             "SHIPDRAFT_DRAFTS_API_KEY",
		"drafts.timeout_secs":        "SHIPDRAFT_DRAFTS_TIMEOUT_SECS",
		"pipeline.base_url":          "SHIPDRAFT_PIPELINE_BASE_URL",
		"pipeline.api_key":           "SHIPDRAFT_PIPELINE_API_KEY",
		"pipeline.timeout_secs":      "SHIPDRAFT_PIPELINE_TIMEOUT_SECS",
		"duty.base_url":              "SHIPDRAFT_DUTY_BASE_URL",
		"duty.api_key":               "SHIPDRAFT_DUTY_API_KEY",
		"duty.timeout_secs":          "SHIPDRAFT_DUTY_TIMEOUT_SECS",
		"xindus.base_url":            "SHIPDRAFT_XINDUS_BASE_URL",
		"xindus.api_key":             "SHIPDRAFT_XINDUS_API_KEY",
		"xindus.timeout_secs":        "SHIPDRAFT_XINDUS_TIMEOUT_SECS",
		"tracker.poll_interval_secs": "SHIPDRAFT_TRACKER_POLL_INTERVAL_SECS",
		"tracker.backoff_cap_secs":   "SHIPDRAFT_TRACKER_BACKOFF_CAP_SECS",
		"tracker.max_poll_failures":  "SHIPDRAFT_TRACKER_MAX_POLL_FAILURES",
		"bulk.rate_per_sec":          "SHIPDRAFT_BULK_RATE_PER_SEC",
		"bulk.concurrency":           "SHIPDRAFT_BULK_CONCURRENCY",
		"email.provider":             "SHIPDRAFT_EMAIL_PROVIDER",
		"email.region":               "SHIPDRAFT_EMAIL_REGION",
		"email.from_address":         "SHIPDRAFT_EMAIL_FROM_ADDRESS",
		"email.from_name":            "SHIPDRAFT_EMAIL_FROM_NAME",
		"email.console_url":          "SHIPDRAFT_EMAIL_CONSOLE_URL",
		"email.recipients":           "SHIPDRAFT_EMAIL_RECIPIENTS",
		"log.level":                  "SHIPDRAFT_LOG_LEVEL",
		"log.format":                 "SHIPDRAFT_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SHIPDRAFT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SHIPDRAFT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}
	cfg.Drafts = ServiceEndpointConfig{
		BaseURL:     v.GetString("drafts.base_url"),
		APIKey:      v.GetString("drafts.api_key"),
		TimeoutSecs: v.GetInt("drafts.timeout_secs"),
	}
	cfg.Pipeline = ServiceEndpointConfig{
		BaseURL:     v.GetString("pipeline.base_url"),
		APIKey:      v.GetString("pipeline.api_key"),
		TimeoutSecs: v.GetInt("pipeline.timeout_secs"),
	}
	cfg.Duty = ServiceEndpointConfig{
		BaseURL:     v.GetString("duty.base_url"),
		APIKey:      v.GetString("duty.api_key"),
		TimeoutSecs: v.GetInt("duty.timeout_secs"),
	}
	cfg.Xindus = XindusConfig{
		BaseURL:     v.GetString("xindus.base_url"),
		APIKey:      v.GetString("xindus.api_key"),
		TimeoutSecs: v.GetInt("xindus.timeout_secs"),
	}
	cfg.Tracker = TrackerConfig{
		PollIntervalSecs: v.GetInt("tracker.poll_interval_secs"),
		BackoffCapSecs:   v.GetInt("tracker.backoff_cap_secs"),
		MaxPollFailures:  v.GetInt("tracker.max_poll_failures"),
	}
	cfg.Bulk = BulkConfig{
		RatePerSec:  v.GetFloat64("bulk.rate_per_sec"),
		Concurrency: v.GetInt("bulk.concurrency"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ConsoleURL:  v.GetString("email.console_url"),
		Recipients:  splitCSV(v.GetString("email.recipients")),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
