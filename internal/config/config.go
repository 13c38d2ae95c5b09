package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration. Values come from the config file when
// present, with RRHH_-prefixed environment variables taking precedence.
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	StorageDriver string        `mapstructure:"storage_driver"`
	StoragePath   string        `mapstructure:"storage_path"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	HTTPRetries   int           `mapstructure:"http_retries"`
}

// Load reads configuration from $XDG_CONFIG_HOME/rrhh/rrhh.yml (or the
// equivalent under the home directory), creating it with defaults when absent.
func Load() (*Config, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("error getting user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	configPath := filepath.Join(configHome, "rrhh", "rrhh.yml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	return load(configPath)
}

func load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RRHH")
	v.AutomaticEnv()

	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("storage_driver", "file")
	v.SetDefault("storage_path", defaultStoragePath())
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("http_retries", 2)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			if err := v.WriteConfigAs(configPath); err != nil {
				return nil, fmt.Errorf("error creating config file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

func defaultStoragePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rrhh"
	}
	return filepath.Join(homeDir, ".local", "share", "rrhh")
}
