// Package config loads settings for the CLI and the reference backend from
// defaults, an optional YAML file, a .env file and SCRAPER_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/storage"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

const envPrefix = "SCRAPER"

type Config struct {
	Client   transport.Config `mapstructure:"client"`
	Server   ServerConfig     `mapstructure:"server"`
	Database DatabaseConfig   `mapstructure:"database"`
	Storage  storage.Config   `mapstructure:"storage"`
	Log      logger.Config    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	APIKey          string        `mapstructure:"api_key"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// shortEnv maps keys to the short variable names documented for SDK users.
var shortEnv = map[string]string{
	"client.base_url": "SCRAPER_BASE_URL",
	"client.api_key":  "SCRAPER_API_KEY",
	"client.timeout":  "SCRAPER_TIMEOUT",
	"client.retries":  "SCRAPER_RETRIES",
	"client.debug":    "SCRAPER_DEBUG",
	"log.level":       "SCRAPER_LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.api_key", "")
	v.SetDefault("client.timeout", transport.DefaultTimeout)
	v.SetDefault("client.retries", transport.DefaultRetries)
	v.SetDefault("client.debug", false)
	v.SetDefault("client.rate_limit", 0)
	v.SetDefault("client.rate_burst", 0)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "scraper.db")

	v.SetDefault("storage.driver", storage.DriverS3)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
}

// Load reads configuration. path may be empty, in which case scraper.yaml is
// looked up in the working directory and a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range shortEnv {
		if err := v.BindEnv(key, "SCRAPER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scraper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Client.BaseURL == "" {
		return errors.New("config: client.base_url is required")
	}
	if c.Client.Timeout < 0 {
		return errors.New("config: client.timeout must not be negative")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	return nil
}
