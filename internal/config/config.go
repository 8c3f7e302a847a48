package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// JWTConfig holds the token issuance/verification settings.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// WebsocketConfig holds the realtime connection tuning knobs.
type WebsocketConfig struct {
	ReadLimit    int64         `mapstructure:"readLimit"`
	PongWait     time.Duration `mapstructure:"pongWait"`
	PingInterval time.Duration `mapstructure:"pingInterval"`
	WriteWait    time.Duration `mapstructure:"writeWait"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Websocket WebsocketConfig `mapstructure:"websocket"`
	// Models lists the model ids selectable per chat.
	Models []string `mapstructure:"models"`
}

// Load reads config.yaml from the given path (if present), applies
// environment overrides (e.g. JWT_SECRET) and returns the merged config.
// A missing config file is not an error; defaults keep the server runnable.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8008)
	v.SetDefault("database.dsn", "ai-chat.db")
	v.SetDefault("jwt.secret", "development-insecure-secret-change-me")
	v.SetDefault("jwt.issuer", "ai-chat-api")
	v.SetDefault("jwt.audience", "ai-chat-clients")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("websocket.readLimit", 4096)
	v.SetDefault("websocket.pongWait", 60*time.Second)
	v.SetDefault("websocket.pingInterval", 30*time.Second)
	v.SetDefault("websocket.writeWait", 5*time.Second)
	v.SetDefault("models", []string{"gpt-4o", "claude-3-5-sonnet", "llama-3-70b"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
