package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`
}

// StoreConfig holds document-store configuration. Driver selects the
// adapter: "mongodb" for the real store, "memory" for local development.
type StoreConfig struct {
	Driver       string `env:"STORE_DRIVER" envDefault:"mongodb"`
	MongoURI     string `env:"MONGODB_URI"`
	DatabaseName string `env:"MONGODB_DATABASE" envDefault:"tutorhub"`
}

// RealtimeConfig holds configuration for live subscriptions.
type RealtimeConfig struct {
	// WebSocketPath is the endpoint path for WebSocket connections.
	WebSocketPath string `env:"WEBSOCKET_PATH" envDefault:"/ws/v1/listen"`

	// ClientSendChannelBuffer is the buffer size for channels sending
	// events to WebSocket clients, so one slow client does not block
	// event distribution.
	ClientSendChannelBuffer int `env:"CLIENT_SEND_CHANNEL_BUFFER" envDefault:"10"`

	// RedisAddr enables the cross-instance change relay when set.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Realtime RealtimeConfig

	// StatsSampleLimit bounds the documents fetched for statistics.
	StatsSampleLimit int `env:"STATS_SAMPLE_LIMIT" envDefault:"1000"`
}

// Load reads configuration from environment variables and applies
// defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Server); err != nil {
		return nil, errors.New("failed to load server configuration: " + err.Error())
	}
	if err := env.Parse(&cfg.Store); err != nil {
		return nil, errors.New("failed to load store configuration: " + err.Error())
	}
	if err := env.Parse(&cfg.Realtime); err != nil {
		return nil, errors.New("failed to load realtime configuration: " + err.Error())
	}

	if cfg.Store.Driver == "mongodb" && cfg.Store.MongoURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.StatsSampleLimit <= 0 {
		cfg.StatsSampleLimit = 1000
	}
	if cfg.Realtime.ClientSendChannelBuffer <= 0 {
		cfg.Realtime.ClientSendChannelBuffer = 10
	}

	return cfg, nil
}
