package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// LedgerConfig tunes the transaction engine.
type LedgerConfig struct {
	AccountIDBase          int64         `mapstructure:"account_id_base"`
	MinorDailyLimit        int           `mapstructure:"minor_daily_limit"`
	AdultDailyLimit        int           `mapstructure:"adult_daily_limit"`
	AdultAge               int           `mapstructure:"adult_age"`
	Window                 time.Duration `mapstructure:"window"`
	ClearRedoOnNewActivity bool          `mapstructure:"clear_redo_on_new_activity"`
	RateLimitBackend       string        `mapstructure:"rate_limit_backend"` // memory, redis
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: QLG_ (Queued LedGer).
// Nested keys use underscore: QLG_LEDGER_MINOR_DAILY_LIMIT, QLG_REDIS_ENABLED, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("ledger.account_id_base", 1001)
	v.SetDefault("ledger.minor_daily_limit", 20)
	v.SetDefault("ledger.adult_daily_limit", 500)
	v.SetDefault("ledger.adult_age", 18)
	v.SetDefault("ledger.window", "24h")
	v.SetDefault("ledger.clear_redo_on_new_activity", true)
	v.SetDefault("ledger.rate_limit_backend", "memory")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: QLG_LEDGER_WINDOW -> ledger.window
	v.SetEnvPrefix("QLG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field rules that defaults alone cannot guarantee.
// Minors must always be strictly more limited than adults.
func (c *Config) Validate() error {
	l := c.Ledger
	if l.MinorDailyLimit <= 0 || l.AdultDailyLimit <= 0 {
		return fmt.Errorf("ledger daily limits must be positive (minor=%d adult=%d)", l.MinorDailyLimit, l.AdultDailyLimit)
	}
	if l.MinorDailyLimit >= l.AdultDailyLimit {
		return fmt.Errorf("ledger.minor_daily_limit (%d) must be lower than ledger.adult_daily_limit (%d)", l.MinorDailyLimit, l.AdultDailyLimit)
	}
	if l.Window <= 0 {
		return fmt.Errorf("ledger.window must be positive, got %s", l.Window)
	}
	switch l.RateLimitBackend {
	case "memory":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("ledger.rate_limit_backend is redis but redis.enabled is false")
		}
	default:
		return fmt.Errorf("unknown ledger.rate_limit_backend %q", l.RateLimitBackend)
	}
	return nil
}
