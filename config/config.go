// Package config loads runtime settings from defaults, an optional dotenv
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	CacheType     string `mapstructure:"CACHE_TYPE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`
	SecretKey          string        `mapstructure:"SECRET_KEY"`
	BcryptCost         int           `mapstructure:"BCRYPT_COST"`
}

// DefaultSecretKey signs flash cookies when SECRET_KEY is unset. It is fine
// for local runs only.
const DefaultSecretKey = "super-secret"

var defaults = map[string]interface{}{
	"PORT":                 "8080",
	"DB_DRIVER":            "sqlite3",
	"DB_HOST":              "",
	"DB_PORT":              "",
	"DB_USER":              "",
	"DB_PASSWORD":          "",
	"DB_NAME":              "file:liist.db?_foreign_keys=on",
	"CACHE_TYPE":           "memory",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"SESSION_IDLE_TIMEOUT": "120m",
	"COOKIE_SECURE":        false,
	"SECRET_KEY":           DefaultSecretKey,
	"BCRYPT_COST":          12,
}

// Load reads configuration. envFile may be empty or point to a file that does
// not exist; environment variables always win over file values.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", envFile, err)
			}
		}
	}

	v.AutomaticEnv()

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
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	switch c.CacheType {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_TYPE %q", c.CacheType)
	}
	if c.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	return nil
}

// Warnings lists settings that are valid but unsafe for a deployment that
// serves cookies over HTTPS.
func (c *Config) Warnings() []string {
	if !c.CookieSecure {
		return nil
	}
	var warnings []string
	if c.SecretKey == DefaultSecretKey {
		warnings = append(warnings, "SECRET_KEY is the built-in default; set a random value")
	}
	if c.CacheType == "memory" {
		warnings = append(warnings, "CACHE_TYPE=memory keeps sessions in one process; use redis")
	}
	return warnings
}
