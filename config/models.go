package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Store         StoreConfig         `mapstructure:"store"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Challenge     ChallengeConfig     `mapstructure:"challenge"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	switch c.Store.Backend {
	case "postgres":
		if c.Postgres.User == "" || c.Postgres.Password == "" || c.Postgres.DBName == "" {
			return errors.New("postgres credentials are required")
		}
		if c.Postgres.Host == "" {
			return errors.New("postgres.host is required")
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if _, err := time.LoadLocation(c.Challenge.TimeZone); err != nil {
		return fmt.Errorf("challenge.time_zone: %w", err)
	}
	if c.Challenge.MaxTeamSize <= 0 {
		return errors.New("challenge.max_team_size must be positive")
	}
	if c.Notifications.BatchSize <= 0 || c.Notifications.BatchSize > 500 {
		return errors.New("notifications.batch_size must be within 1..500")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location returns the reporting time zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Challenge.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the entity store backend.
type StoreConfig struct {
	Backend     string        `mapstructure:"backend"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// HTTPConfig contains transport settings.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowOrigins   string        `mapstructure:"allow_origins"`
}

// AuthConfig contains bearer token and hook settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	HookKey   string `mapstructure:"hook_key"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PostgresConfig describes database connection parameters.
type PostgresConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"db_name"`
	SSLMode        string        `mapstructure:"ssl_mode"`
	MigrationsDir  string        `mapstructure:"migrations_dir"`
	MigrateTimeout time.Duration `mapstructure:"migrate_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
}

// DSN returns a Postgres connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// RedisConfig configures the scheduler tick lock. An empty address disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ChallengeConfig holds aggregation rules.
type ChallengeConfig struct {
	TimeZone         string `mapstructure:"time_zone"`
	SuccessLP        int64  `mapstructure:"success_lp"`
	FailLP           int64  `mapstructure:"fail_lp"`
	MaxTeamSize      int    `mapstructure:"max_team_size"`
	AchievementsFile string `mapstructure:"achievements_file"`
}

// NotificationsConfig holds wake-up push settings.
type NotificationsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval"`
	GatewayURL     string        `mapstructure:"gateway_url"`
	GatewayKey     string        `mapstructure:"gateway_key"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	BatchSize      int           `mapstructure:"batch_size"`
	Title          string        `mapstructure:"title"`
	Body           string        `mapstructure:"body"`
	WeeklyRollover bool          `mapstructure:"weekly_rollover"`
}
