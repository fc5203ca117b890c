package main

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the proxy server configuration, loaded from the environment.
// Credential values are never logged.
type Config struct {
	Port                   int    `env:"PORT, default=8080"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECS, default=25"`
	RedisURL               string `env:"REDIS_URL, default=localhost:6379"`

	// Twitch application credentials. Both are required: the proxy cannot
	// authenticate against IGDB without them.
	ClientID     string `env:"TWITCH_CLIENT_ID, required"`
	ClientSecret string `env:"TWITCH_CLIENT_SECRET, required"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// Endpoint overrides, internal only.
	TokenURL   string `env:"TOKEN_URL"`
	BackendURL string `env:"BACKEND_URL"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig(ctx context.Context) (Config, error) {
	return loadConfig(ctx, nil) // load from OS environment
}

func loadConfig(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return Config{}, fmt.Errorf("configuration load failed: %w", err)
	}
	return cfg, nil
}
