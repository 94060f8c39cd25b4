// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = "config/.env"

// NewConfig loads configuration from environment using viper with typed defaults and validation.
func NewConfig() (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, v := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, v)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 7)
	v.SetDefault("logging.compress", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("http.request_timeout", 3*time.Second)
	v.SetDefault("http.allow_origins", "*")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.hook_key", "")

	v.SetDefault("store.backend", "postgres")
	v.SetDefault("store.max_attempts", 8)
	v.SetDefault("store.retry_delay", 25*time.Millisecond)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db_name", "wake_up_challenge_db")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.migrations_dir", "db/migrations")
	v.SetDefault("postgres.migrate_timeout", 10*time.Second)
	v.SetDefault("postgres.query_timeout", 2*time.Second)
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("challenge.time_zone", "Asia/Seoul")
	v.SetDefault("challenge.success_lp", 100)
	v.SetDefault("challenge.fail_lp", -10)
	v.SetDefault("challenge.max_team_size", 50)
	v.SetDefault("challenge.achievements_file", "")

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.interval", time.Minute)
	v.SetDefault("notifications.gateway_url", "")
	v.SetDefault("notifications.gateway_key", "")
	v.SetDefault("notifications.gateway_timeout", 10*time.Second)
	v.SetDefault("notifications.rate_per_second", 20.0)
	v.SetDefault("notifications.batch_size", 500)
	v.SetDefault("notifications.title", "일어날 시간이에요!")
	v.SetDefault("notifications.body", "앱을 열어서 오늘의 기상 미션을 10분 내로 수행해주세요.")
	v.SetDefault("notifications.weekly_rollover", true)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"logging.file",
		"logging.max_size_mb",
		"logging.max_backups",
		"logging.max_age_days",
		"logging.compress",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"http.request_timeout",
		"http.allow_origins",
		"auth.jwt_secret",
		"auth.issuer",
		"auth.hook_key",
		"store.backend",
		"store.max_attempts",
		"store.retry_delay",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.db_name",
		"postgres.ssl_mode",
		"postgres.migrations_dir",
		"postgres.migrate_timeout",
		"postgres.query_timeout",
		"postgres.max_conns",
		"postgres.min_conns",
		"redis.addr",
		"redis.password",
		"redis.db",
		"challenge.time_zone",
		"challenge.success_lp",
		"challenge.fail_lp",
		"challenge.max_team_size",
		"challenge.achievements_file",
		"notifications.enabled",
		"notifications.interval",
		"notifications.gateway_url",
		"notifications.gateway_key",
		"notifications.gateway_timeout",
		"notifications.rate_per_second",
		"notifications.batch_size",
		"notifications.title",
		"notifications.body",
		"notifications.weekly_rollover",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
