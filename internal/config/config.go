package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// DefaultExpireSchedule runs the expiry sweep every five minutes.
const DefaultExpireSchedule = "*/5 * * * *"

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env         string // APP_ENV (dev, production, ...)
	Port        string // APP_PORT
	StoreDriver string // STORE_DRIVER: mysql | memory

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	JWTSecret        string // signs admin session tokens
	AdminTokenTTLMin int
	BcryptCost       int
	AdminUsername    string // seed admin, both empty skips seeding
	AdminPassword    string

	Timezone      string // LAB_TIMEZONE
	DevTimeOffset int    // DEV_TIME_OFFSET, hours added to "now" for decisions
	SeatCount     int
	FixedSeats    []int

	CronSecret     string // bearer secret of the cron endpoint; empty refuses every call
	ExpireSchedule string // cron spec of the in-process sweep; empty disables it

	LogLevel  string
	LogFormat string

	RabbitURL   string // empty disables events
	EventsQueue string
	AuditLogDir string

	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// Load reads a .env file when one exists, then the process environment,
// which wins over the file. Every missing or malformed variable is reported
// in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is fine
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var errs []error
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}
	intOr := func(key string, def int) int {
		s := os.Getenv(key)
		if s == "" {
			return def
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid int for %s: %q", key, s))
			return def
		}
		return n
	}

	cfg := Config{
		Env:              envStr("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		StoreDriver:      strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		JWTSecret:        must("JWT_SECRET"),
		AdminTokenTTLMin: intOr("ADMIN_TOKEN_TTL_MIN", 60),
		BcryptCost:       intOr("BCRYPT_COST", 10),
		AdminUsername:    os.Getenv("ADMIN_USERNAME"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		Timezone:         envStr("LAB_TIMEZONE", "Asia/Seoul"),
		DevTimeOffset:    intOr("DEV_TIME_OFFSET", 0),
		SeatCount:        intOr("SEAT_COUNT", 17),
		CronSecret:       os.Getenv("CRON_SECRET"),
		ExpireSchedule:   DefaultExpireSchedule,
		LogLevel:         envStr("LOG_LEVEL", "info"),
		LogFormat:        envStr("LOG_FORMAT", "json"),
		RabbitURL:        os.Getenv("RABBITMQ_URL"),
		EventsQueue:      envStr("EVENTS_QUEUE", "reservation.events"),
		AuditLogDir:      envStr("AUDIT_LOG_DIR", "logs"),
		Redis:            LoadRedisConfig(),
		RateLimit:        LoadRateLimitConfig(),
		Cache:            LoadCacheConfig(),
	}
	if v, ok := os.LookupEnv("EXPIRE_SCHEDULE"); ok {
		cfg.ExpireSchedule = strings.TrimSpace(v)
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver))
	}

	fixed := "6,12,13"
	if v, ok := os.LookupEnv("FIXED_SEATS"); ok {
		fixed = v
	}
	seats, err := parseSeatList(fixed)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid FIXED_SEATS: %w", err))
	}
	cfg.FixedSeats = seats

	if cfg.SeatCount < 1 {
		errs = append(errs, fmt.Errorf("SEAT_COUNT must be positive, got %d", cfg.SeatCount))
	}
	return cfg, errors.Join(errs...)
}

// parseSeatList parses a comma separated list of seat ids. Blank input is
// an empty list.
func parseSeatList(s string) ([]int, error) {
	out := []int{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad seat id %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
