package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	// DBPath empty means rooms live only in process memory.
	DBPath string `mapstructure:"db_path"`
}

type RoomConfig struct {
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

type ExecutorConfig struct {
	// Timeout is the fixed per-job deadline. Requests cannot change it.
	Timeout      time.Duration `mapstructure:"timeout"`
	RuntimesFile string        `mapstructure:"runtimes_file"`
}

type CompletionConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxContext int    `mapstructure:"max_context"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Room       RoomConfig       `mapstructure:"room"`
	Executor   ExecutorConfig   `mapstructure:"executor"`
	Completion CompletionConfig `mapstructure:"completion"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("sharepad")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.sharepad")

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", "")
	v.SetDefault("room.grace_period", time.Hour)
	v.SetDefault("executor.timeout", 5*time.Second)
	v.SetDefault("executor.runtimes_file", "")
	v.SetDefault("completion.base_url", "")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.model", "")
	v.SetDefault("completion.max_context", 5000)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has a default.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand environment variables in the API key
	if key := cfg.Completion.APIKey; strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
		cfg.Completion.APIKey = os.Getenv(key[2 : len(key)-1])
	}

	return &cfg, nil
}

// CompletionEnabled reports whether a completion provider is configured.
func (c *Config) CompletionEnabled() bool {
	return c.Completion.BaseURL != "" && c.Completion.Model != ""
}
