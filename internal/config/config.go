package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	// MinOrphanGracePeriod bounds how young a line item the sweeper may remove.
	MinOrphanGracePeriod = time.Minute
)

// Config is the process configuration.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	// RabbitMQURL disables order events when empty.
	RabbitMQURL string

	OrphanSweepInterval time.Duration
	OrphanGracePeriod   time.Duration

	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment and an optional config.yaml
// in the working directory.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", EnvProduction)
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "eshop.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ORPHAN_SWEEP_INTERVAL", "10m")
	v.SetDefault("ORPHAN_GRACE_PERIOD", "5m")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		AppEnv:              strings.ToLower(v.GetString("APP_ENV")),
		DatabaseDriver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		TokenTTL:            v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		OrphanSweepInterval: v.GetDuration("ORPHAN_SWEEP_INTERVAL"),
		OrphanGracePeriod:   v.GetDuration("ORPHAN_GRACE_PERIOD"),
		AdminEmail:          v.GetString("ADMIN_EMAIL"),
		AdminPassword:       v.GetString("ADMIN_PASSWORD"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return errors.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver != DriverMemory && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		if c.AppEnv != EnvDevelopment {
			return errors.New("JWT_SECRET is required")
		}
		c.JWTSecret = "development-secret"
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.OrphanSweepInterval < 0 || c.OrphanGracePeriod < 0 {
		return errors.New("orphan sweep durations must not be negative")
	}
	// A sweep must never race an in-flight placement.
	if c.OrphanSweepInterval > 0 && c.OrphanGracePeriod < MinOrphanGracePeriod {
		return errors.Errorf("ORPHAN_GRACE_PERIOD must be at least %s when sweeping is enabled", MinOrphanGracePeriod)
	}
	return nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}
