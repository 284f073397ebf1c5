// Package config provides configuration management for the PCR journal.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"pcr-journal/internal/errors"
	"pcr-journal/internal/store"
	"pcr-journal/pkg/utils"
)

// EnvPrefix prefixes environment overrides, e.g. PCR_JOURNAL_STORAGE_BACKEND.
const EnvPrefix = "PCR_JOURNAL"

// Config holds all application configuration.
type Config struct {
	Journal JournalConfig `mapstructure:"journal"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-" json:"-"`
}

// JournalConfig holds the trading-day parameters shown on the dashboard.
// Amounts are decimal text.
type JournalConfig struct {
	Capital         string `mapstructure:"capital"`
	DailyTarget     string `mapstructure:"daily_target"`
	MaxTradesPerDay int    `mapstructure:"max_trades_per_day"`
	Timezone        string `mapstructure:"timezone"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // sqlite, redis, memory
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" json:"-"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/pcr-journal"
	}
	return filepath.Join(home, ".config", "pcr-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by the commented template and loading continues
// with defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A .env next to config.toml supplies overrides without touching the
	// shell. Variables already set in the environment win.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "loading config.toml")
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{Dir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config.toml")
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(configDir, "journal.db")
	}
	if cfg.Log.FilePath == "" {
		cfg.Log.FilePath = filepath.Join(configDir, "logs", "journal.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return cfg, nil
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("journal.capital", "10000")
	v.SetDefault("journal.daily_target", "3000")
	v.SetDefault("journal.max_trades_per_day", 5)
	v.SetDefault("journal.timezone", "Asia/Kolkata")

	v.SetDefault("storage.backend", store.BackendSQLite)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "pcr:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
	v.SetDefault("log.file", true)
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("ui.color_enabled", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := parseAmount("journal.capital", c.Journal.Capital); err != nil {
		return err
	}
	if _, err := parseAmount("journal.daily_target", c.Journal.DailyTarget); err != nil {
		return err
	}
	if c.Journal.MaxTradesPerDay < 0 {
		return invalid("journal.max_trades_per_day must be non-negative")
	}
	if _, err := utils.LoadLocation(c.Journal.Timezone); err != nil {
		return invalid("journal.timezone %q is not a known time zone", c.Journal.Timezone)
	}

	switch c.Storage.Backend {
	case store.BackendSQLite:
		if c.Storage.Path == "" {
			return invalid("storage.path is required for the sqlite backend")
		}
	case store.BackendRedis:
		if c.Storage.RedisAddr == "" {
			return invalid("storage.redis_addr is required for the redis backend")
		}
		if c.Storage.RedisDB < 0 {
			return invalid("storage.redis_db must be non-negative")
		}
	case store.BackendMemory:
	default:
		return invalid("invalid storage backend: %s (must be 'sqlite', 'redis' or 'memory')", c.Storage.Backend)
	}

	return nil
}

// Capital returns the configured default capital.
func (c *Config) Capital() decimal.Decimal {
	d, _ := parseAmount("journal.capital", c.Journal.Capital)
	return d
}

// DailyTarget returns the configured daily profit target.
func (c *Config) DailyTarget() decimal.Decimal {
	d, _ := parseAmount("journal.daily_target", c.Journal.DailyTarget)
	return d
}

// Location returns the time zone that defines a trading day.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return utils.IndiaLocation
	}
	return loc
}

// StoreOptions maps the storage section onto store.Options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		RedisPrefix:   c.Storage.RedisPrefix,
	}
}

// FilePath returns the path of config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, "config.toml")
}

func parseAmount(key, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid("%s must be a number, got %q", key, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, invalid("%s must be non-negative", key)
	}
	return d, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrConfigInvalid, format, args...)
}
