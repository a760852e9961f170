package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	StoreDriver        string   `mapstructure:"STORE_DRIVER"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	SQLitePath         string   `mapstructure:"SQLITE_PATH"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	SessionSecret      string   `mapstructure:"SESSION_SECRET"`
	SessionTTLHours    int      `mapstructure:"SESSION_TTL_HOURS"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	AdminUsername      string   `mapstructure:"ADMIN_USERNAME"`
	AdminPassword      string   `mapstructure:"ADMIN_PASSWORD"`
	AutoSaveDebounceMs int      `mapstructure:"AUTOSAVE_DEBOUNCE_MS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("SQLITE_PATH", "./data/labdesk.db")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SESSION_TTL_HOURS", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTOSAVE_DEBOUNCE_MS", 800)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("STORE_DRIVER")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("SQLITE_PATH")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL_HOURS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("ADMIN_USERNAME")
	v.BindEnv("ADMIN_PASSWORD")
	v.BindEnv("AUTOSAVE_DEBOUNCE_MS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() && cfg.SessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET is not set; using an ephemeral development secret.")
		log.Println("WARNING: Sessions will not survive a restart. Set SESSION_SECRET for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The store driver
// must be one of the supported adapters, postgres requires a DATABASE_URL,
// and production requires a real session secret.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is \"postgres\"")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is \"sqlite\"")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be \"postgres\" or \"sqlite\", got %q", c.StoreDriver)
	}

	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}
	if c.AutoSaveDebounceMs <= 0 {
		return fmt.Errorf("AUTOSAVE_DEBOUNCE_MS must be positive, got %d", c.AutoSaveDebounceMs)
	}

	return nil
}
