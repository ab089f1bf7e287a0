package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env if present; absence is fine.
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Push      PushConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	BaseURL   string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DatabaseConfig struct {
	Path string `envconfig:"DATABASE_PATH" default:"./data/larder.db"`
}

type AuthConfig struct {
	OIDCIssuer       string `envconfig:"OIDC_ISSUER"`
	OIDCClientID     string `envconfig:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `envconfig:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `envconfig:"OIDC_REDIRECT_URL"`
	SessionSecret    string `envconfig:"SESSION_SECRET" required:"true"`
}

// PushConfig points at the push gateway that fans messages out to
// registered device tokens.
type PushConfig struct {
	GatewayURL string        `envconfig:"PUSH_GATEWAY_URL"`
	APIKey     string        `envconfig:"PUSH_API_KEY"`
	Timeout    time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

type SchedulerConfig struct {
	ReminderInterval time.Duration `envconfig:"REMINDER_INTERVAL" default:"1h"`
	PruneInterval    time.Duration `envconfig:"TOKEN_PRUNE_INTERVAL" default:"24h"`
	StaleTokenAge    time.Duration `envconfig:"STALE_TOKEN_AGE" default:"2160h"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
