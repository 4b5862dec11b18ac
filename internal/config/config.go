// Package config loads server configuration from isora.yaml (or
// isora.json) plus ISORA_* environment variables. Environment wins
// over file values, file values win over defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	ierrors "github.com/isora-dev/isora/internal/errors"
)

// Defaults for a fresh project.
const (
	DefaultHost = "localhost"
	DefaultPort = 3000
)

// Config is the full server configuration.
type Config struct {
	// Name is the project name, used in logs.
	Name string `mapstructure:"name"`

	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Assets  AssetsConfig  `mapstructure:"assets"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Dev     DevConfig     `mapstructure:"dev"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// ReadTimeout and WriteTimeout bound slow clients.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionConfig configures the session backend.
type SessionConfig struct {
	// Backend is "memory", "redis", or "sql".
	Backend string `mapstructure:"backend"`

	// TTL is the sliding session lifetime.
	TTL time.Duration `mapstructure:"ttl"`

	// RedisURL configures the redis backend, e.g.
	// "redis://localhost:6379/0".
	RedisURL string `mapstructure:"redis_url"`

	// SQLDriver and SQLDSN configure the sql backend.
	SQLDriver string `mapstructure:"sql_driver"`
	SQLDSN    string `mapstructure:"sql_dsn"`
}

// AssetsConfig configures static assets.
type AssetsConfig struct {
	// Dir is the local directory served under BaseURL.
	Dir string `mapstructure:"dir"`

	// BaseURL is the public prefix for assets.
	BaseURL string `mapstructure:"base_url"`

	// Manifest is the path of the build manifest. Empty means
	// unhashed dev assets.
	Manifest string `mapstructure:"manifest"`

	// Bucket and Prefix configure S3 publishing.
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// CacheConfig configures the page micro-cache.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// DevConfig configures development mode.
type DevConfig struct {
	// Enabled turns on live reload and pretty rendering.
	Enabled bool `mapstructure:"enabled"`

	// WatchDirs are the directories watched for changes.
	WatchDirs []string `mapstructure:"watch_dirs"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `mapstructure:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// Default returns the built-in defaults without touching the
// filesystem or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are well-formed; Unmarshal cannot fail on them.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from dir. Missing config files are fine;
// defaults plus environment cover everything.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("isora")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("ISORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, ierrors.From(err, "I701")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierrors.From(err, "I701")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "isora-app")
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("assets.dir", "static")
	v.SetDefault("assets.base_url", "/static")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("dev.enabled", false)
	v.SetDefault("dev.watch_dirs", []string{"."})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
