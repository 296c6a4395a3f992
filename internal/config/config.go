package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.alis.build/alog"
)

type Config struct {
	Port             string        `mapstructure:"port"`
	LogLevel         string        `mapstructure:"log_level"`
	BaseStatement    string        `mapstructure:"base_statement"`
	PlaceholderStyle string        `mapstructure:"placeholder_style"`
	MaxDepth         int           `mapstructure:"max_depth"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
	RedisURL         string        `mapstructure:"redis_url"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from defaults, an optional file named by CONFIG_FILE,
// and environment variables (PORT, LOG_LEVEL, BASE_STATEMENT, ...), in increasing priority.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8088")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_statement", "SELECT c.data, c.id, c.type FROM c")
	v.SetDefault("placeholder_style", "colon")
	v.SetDefault("max_depth", 32)
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("config_file", "")

	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseStatement == "" {
		return errors.New("base_statement must not be empty")
	}
	if c.PlaceholderStyle != "colon" && c.PlaceholderStyle != "at" {
		return fmt.Errorf("placeholder_style must be colon or at, got %q", c.PlaceholderStyle)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Level maps log_level to an alog level.
func (c *Config) Level() (alog.LogLevel, error) {
	switch c.LogLevel {
	case "debug":
		return alog.LevelDebug, nil
	case "", "info":
		return alog.LevelInfo, nil
	case "warning", "warn":
		return alog.LevelWarning, nil
	case "error":
		return alog.LevelError, nil
	default:
		return alog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}
