// Package config loads benepick configuration from defaults, an optional
// YAML file, a .env file and BENEPICK_* environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BENEPICK_SERVER_PORT.
const EnvPrefix = "BENEPICK"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	DB        DBConfig        `mapstructure:"db"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Input     InputConfig     `mapstructure:"input"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend string `mapstructure:"backend"`

	// TTL is an idle expiry the Redis backend applies to sessions without
	// their own deadline. Zero keeps them until deleted.
	TTL             time.Duration `mapstructure:"ttl"`
	CompletionGrace time.Duration `mapstructure:"completion_grace"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`

	// EncryptionKey is a hex-encoded 32-byte AES key. Empty disables encryption.
	EncryptionKey string `mapstructure:"encryption_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// OpenAIConfig configures answer generation. An empty APIKey disables it.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type InputConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// Load reads configuration. file may be empty; a missing .env is ignored.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", time.Duration(0))
	v.SetDefault("session.completion_grace", 60*time.Second)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("session.encryption_key", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "benepick:session:")
	v.SetDefault("db.path", "./data/benepick.db")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("ratelimit.requests", 30)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("input.max_size", 4096)
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr cannot be empty when session.backend is redis")
		}
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", c.Session.Backend)
	}
	if c.Session.TTL < 0 || c.Session.CompletionGrace < 0 {
		return fmt.Errorf("session durations cannot be negative")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be > 0")
	}
	if c.Session.EncryptionKey != "" {
		if _, err := c.EncryptionKey(); err != nil {
			return err
		}
	}
	if c.DB.Path == "" {
		return fmt.Errorf("db.path cannot be empty")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.requests and ratelimit.window must be > 0")
	}
	if c.Input.MaxSize <= 0 {
		return fmt.Errorf("input.max_size must be > 0")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// EncryptionKey decodes the session encryption key. It returns nil when
// encryption is disabled.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Session.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Session.EncryptionKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("session.encryption_key must be 64 hex characters")
	}
	return key, nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
