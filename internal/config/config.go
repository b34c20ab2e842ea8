// Package config loads server configuration: a .env file is preloaded
// into the environment first, then viper merges defaults, an optional
// whiteboard.yaml and WHITEBOARD_-prefixed environment variables.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Limits    LimitsConfig
	Transport TransportConfig
}

type ServerConfig struct {
	Address        string
	AllowedOrigins []string
	JWTSecret      string
}

type LimitsConfig struct {
	MaxWhiteboards       int
	MaxSessionsPerBoard  int
	MaxShapesPerCanvas   int
	MaxMessageSize       int
	MessagesPerSecond    float64
	BurstSize            int
	ConnectionsPerMinute int
	ConnectionBurst      int
}

type TransportConfig struct {
	PongWait        time.Duration
	WriteWait       time.Duration
	RegisterTimeout time.Duration
	CleanupInterval time.Duration
	BoardIdleExpiry time.Duration
	BoardMaxAge     time.Duration
}

// Load reads configuration from .env, an optional config file, and
// environment variables.
func Load(logger *slog.Logger, fileName string) (*Config, error) {
	// .env is optional; absence is not an error
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("server.jwtSecret", "")
	v.SetDefault("limits.maxWhiteboards", 1000)
	v.SetDefault("limits.maxSessionsPerBoard", 50)
	v.SetDefault("limits.maxShapesPerCanvas", 10000)
	v.SetDefault("limits.maxMessageSize", 1<<20)
	v.SetDefault("limits.messagesPerSecond", 30.0)
	v.SetDefault("limits.burstSize", 10)
	v.SetDefault("limits.connectionsPerMinute", 10)
	v.SetDefault("limits.connectionBurst", 5)
	v.SetDefault("transport.pongWait", "60s")
	v.SetDefault("transport.writeWait", "10s")
	v.SetDefault("transport.registerTimeout", "5s")
	v.SetDefault("transport.cleanupInterval", "15m")
	v.SetDefault("transport.boardIdleExpiry", "1h")
	v.SetDefault("transport.boardMaxAge", "24h")

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WHITEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		logger.Warn("config file not found, relying on defaults and env vars")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
