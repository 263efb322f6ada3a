package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	// Dir holds the token and cached user entries. Defaults to
	// <home>/.fitcoach when empty.
	Dir string `mapstructure:"dir"`

	// Mode selects the keystore backend: "plain" or "encrypted".
	Mode string `mapstructure:"mode"`

	// Passcode unlocks the encrypted backend. Required when Mode is
	// "encrypted"; usually supplied via FITCOACH_STORAGE_PASSCODE.
	Passcode string `mapstructure:"passcode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// Load reads configuration from the given file path (yaml). If path is
// empty it looks for config.yaml next to the binary's working
// directory; a missing file is fine, defaults and FITCOACH_* env
// overrides still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "https://api.fitcoach.app/v1")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("storage.mode", "plain")
	v.SetDefault("log.level", "info")

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. FITCOACH_API_BASE_URL
	v.SetEnvPrefix("FITCOACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url must not be empty")
	}
	switch c.Storage.Mode {
	case "plain":
	case "encrypted":
		if c.Storage.Passcode == "" {
			return fmt.Errorf("config: storage.passcode required for encrypted mode")
		}
	default:
		return fmt.Errorf("config: unknown storage.mode %q", c.Storage.Mode)
	}
	return nil
}

// StateDir resolves the storage directory, defaulting under home.
func (c *Config) StateDir(home string) string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(home, ".fitcoach")
}
