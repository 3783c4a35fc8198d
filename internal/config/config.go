// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds every runtime setting of the server.
type Config struct {
	BindAddr   string
	// TrustProxy takes the peer address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
	Database   DatabaseConfig

	HeartbeatInterval time.Duration
	ClientTimeout     time.Duration

	Login LoginConfig

	LogLevel zapcore.Level
}

// DatabaseConfig locates the store and bounds its pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns       int
	AcquireTimeout time.Duration
}

// LoginConfig bounds failed logins per user and peer.
type LoginConfig struct {
	Window   time.Duration
	MaxFails int
	Block    time.Duration
}

// Load reads envFile when it exists, then the environment.
// A missing envFile is not an error; a malformed value is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var p parser
	cfg := Config{
		BindAddr:   getEnv("BIND_ADDR", ":8080"),
		TrustProxy: p.bool("TRUST_PROXY", false),
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           p.int("DB_PORT", 5432),
			User:           getEnv("DB_USER", "rugo"),
			Password:       getEnv("DB_PASSWORD", ""),
			Name:           getEnv("DB_NAME", "rugo"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       p.int("DB_MAX_CONNS", 16),
			AcquireTimeout: p.duration("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		},
		HeartbeatInterval: p.duration("HEARTBEAT_INTERVAL", 5*time.Second),
		ClientTimeout:     p.duration("CLIENT_TIMEOUT", 10*time.Second),
		Login: LoginConfig{
			Window:   p.duration("LOGIN_WINDOW", 15*time.Minute),
			MaxFails: p.int("LOGIN_MAX_FAILS", 5),
			Block:    p.duration("LOGIN_BLOCK", 15*time.Minute),
		},
	}
	lvl, err := zapcore.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = lvl

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	var errs []error
	if c.HeartbeatInterval <= 0 || c.HeartbeatInterval >= c.ClientTimeout {
		errs = append(errs, fmt.Errorf("HEARTBEAT_INTERVAL (%s) must be positive and shorter than CLIENT_TIMEOUT (%s)",
			c.HeartbeatInterval, c.ClientTimeout))
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.Database.MaxConns))
	}
	if c.Login.MaxFails < 1 {
		errs = append(errs, fmt.Errorf("LOGIN_MAX_FAILS must be at least 1, got %d", c.Login.MaxFails))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		User:   url.UserPassword(d.User, d.Password),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parser collects conversion errors so all bad variables are reported at once.
type parser struct{ errs []error }

func (p *parser) int(key string, defaultValue int) int {
	s, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	s, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	s, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}
