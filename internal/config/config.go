package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend identifies the persistent catalog store
type Backend string

const (
	BackendBolt  Backend = "bolt"
	BackendRedis Backend = "redis"
)

// Config holds all application configuration
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Report   ReportConfig   `mapstructure:"report"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// UpstreamConfig holds fantasy API client configuration
type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Sport         string        `mapstructure:"sport"`
	Season        string        `mapstructure:"season"`
	UserAgent     string        `mapstructure:"user_agent"`
	Attempts      int           `mapstructure:"attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// CacheConfig holds both cache tiers' configuration
type CacheConfig struct {
	Dir        string        `mapstructure:"dir"`
	Backend    Backend       `mapstructure:"backend"`   // "bolt" or "redis"
	RedisURL   string        `mapstructure:"redis_url"` // redis backend only
	MemorySize int           `mapstructure:"memory_size"`
	MemoryTTL  time.Duration `mapstructure:"memory_ttl"`
	Timezone   string        `mapstructure:"timezone"` // IANA name, empty = local
}

// ReportConfig holds report shaping options
type ReportConfig struct {
	TopN           int      `mapstructure:"top_n"`
	StatusOrder    []string `mapstructure:"status_order"`
	IncludeUnknown bool     `mapstructure:"include_unknown"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultStatusOrder is the severity-descending order of reported availability statuses.
var DefaultStatusOrder = []string{"PUP", "IR", "Suspended", "OUT", "Doubtful", "Questionable", "Probable"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:       "https://api.sleeper.app/v1",
			Sport:         "nfl",
			Season:        strconv.Itoa(time.Now().Year()),
			UserAgent:     "lineup/1.0",
			Attempts:      3,
			RetryInterval: time.Second,
		},
		Cache: CacheConfig{
			Dir:        defaultCachePath(),
			Backend:    BackendBolt,
			MemorySize: 100,
			MemoryTTL:  300 * time.Second,
		},
		Report: ReportConfig{
			TopN:           6,
			StatusOrder:    append([]string(nil), DefaultStatusOrder...),
			IncludeUnknown: true,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lineup", "lineup.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lineup", "lineup.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lineup")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lineup")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "lineup", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lineup", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.New(), defaultConfigPath(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. LINEUP_UPSTREAM_SEASON
	v.SetEnvPrefix("LINEUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys absent from the file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("upstream.base_url", cfg.Upstream.BaseURL)
	v.SetDefault("upstream.sport", cfg.Upstream.Sport)
	v.SetDefault("upstream.season", cfg.Upstream.Season)
	v.SetDefault("upstream.user_agent", cfg.Upstream.UserAgent)
	v.SetDefault("upstream.attempts", cfg.Upstream.Attempts)
	v.SetDefault("upstream.retry_interval", cfg.Upstream.RetryInterval)

	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.backend", string(cfg.Cache.Backend))
	v.SetDefault("cache.redis_url", cfg.Cache.RedisURL)
	v.SetDefault("cache.memory_size", cfg.Cache.MemorySize)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.timezone", cfg.Cache.Timezone)

	v.SetDefault("report.top_n", cfg.Report.TopN)
	v.SetDefault("report.status_order", cfg.Report.StatusOrder)
	v.SetDefault("report.include_unknown", cfg.Report.IncludeUnknown)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.cors_origins", cfg.Server.CORSOrigins)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.Attempts < 1 {
		return fmt.Errorf("upstream.attempts must be at least 1, got %d", c.Upstream.Attempts)
	}
	switch c.Cache.Backend {
	case BackendBolt:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.MemorySize < 1 {
		return fmt.Errorf("cache.memory_size must be positive, got %d", c.Cache.MemorySize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone the catalog freshness schedule is evaluated in
func (c *Config) Location() (*time.Location, error) {
	if c.Cache.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Cache.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid cache.timezone %q: %w", c.Cache.Timezone, err)
	}
	return loc, nil
}
