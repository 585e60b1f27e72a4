// Package config loads service settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"tcpsweep/logging"
)

// Config holds every tunable of the scan service.
type Config struct {
	Addr          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIKey        string
	ProbeTimeout  time.Duration
	DefaultBatch  int
	MaxBatch      int
	Workers       int
	RateLimit     int64
	RateWindow    time.Duration
	TaskTTL       time.Duration
	LogLevel      slog.Level
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Addr:         ":8080",
		RedisAddr:    "localhost:6379",
		ProbeTimeout: time.Second,
		MaxBatch:     4096,
		Workers:      4,
		RateLimit:    60,
		RateWindow:   time.Minute,
		TaskTTL:      24 * time.Hour,
		LogLevel:     slog.LevelInfo,
	}
}

// Load reads the given .env files (".env" when none are named) into the process
// environment without overriding existing variables, then parses the configuration.
// Missing .env files are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv parses the configuration using lookup to read variables.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str("TCPSWEEP_ADDR", &cfg.Addr)
	p.str("REDIS_ADDR", &cfg.RedisAddr)
	p.str("REDIS_PASSWORD", &cfg.RedisPassword)
	p.integer("REDIS_DB", &cfg.RedisDB)
	p.str("TCPSWEEP_API_KEY", &cfg.APIKey)
	p.duration("TCPSWEEP_PROBE_TIMEOUT", &cfg.ProbeTimeout)
	p.integer("TCPSWEEP_DEFAULT_BATCH", &cfg.DefaultBatch)
	p.integer("TCPSWEEP_MAX_BATCH", &cfg.MaxBatch)
	p.integer("TCPSWEEP_WORKERS", &cfg.Workers)
	p.int64("TCPSWEEP_RATE_LIMIT", &cfg.RateLimit)
	p.duration("TCPSWEEP_RATE_WINDOW", &cfg.RateWindow)
	p.duration("TCPSWEEP_TASK_TTL", &cfg.TaskTTL)

	if raw, ok := lookup("TCPSWEEP_LOG_LEVEL"); ok && raw != "" {
		lvl, err := logging.ParseLevel(raw)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("TCPSWEEP_LOG_LEVEL: %w", err))
		}
		cfg.LogLevel = lvl
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var (
	// ErrInvalidConfig wraps every semantic validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Validate checks value ranges that parsing alone cannot catch.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	case c.ProbeTimeout <= 0:
		return fmt.Errorf("%w: probe timeout must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.MaxBatch <= 0:
		return fmt.Errorf("%w: max batch must be positive", ErrInvalidConfig)
	case c.DefaultBatch < 0 || c.DefaultBatch > c.MaxBatch:
		return fmt.Errorf("%w: default batch must be within 0-%d", ErrInvalidConfig, c.MaxBatch)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	case c.RateLimit > 0 && c.RateWindow <= 0:
		return fmt.Errorf("%w: rate window must be positive", ErrInvalidConfig)
	case c.TaskTTL <= 0:
		return fmt.Errorf("%w: task ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.raw(key); ok {
		*dst = v
	}
}

func (p *parser) integer(key string, dst *int) {
	v, ok := p.raw(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (p *parser) int64(key string, dst *int64) {
	v, ok := p.raw(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.raw(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}
