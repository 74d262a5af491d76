package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":         "dev",
		"APP_PORT":        "8080",
		"JWT_SECRET":      "secret",
		"STORE_DRIVER":    "mysql",
		"DB_USER":         "lab",
		"DB_PASS":         "",
		"DB_HOST":         "localhost",
		"DB_PORT":         "3306",
		"DB_NAME":         "lab",
		"FIXED_SEATS":     "6, 12,13",
		"SEAT_COUNT":      "17",
		"LAB_TIMEZONE":    "Asia/Seoul",
		"DEV_TIME_OFFSET": "0",
	} {
		t.Setenv(k, v)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	baseEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, []int{6, 12, 13}, cfg.FixedSeats)
	assert.Equal(t, 17, cfg.SeatCount)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_MissingRequired(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_HOST", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestFromEnv_MemoryDriverSkipsDatabase(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
}

func TestFromEnv_Invalid(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("FIXED_SEATS", "6,x")
	t.Setenv("DEV_TIME_OFFSET", "two")
	t.Setenv("SEAT_COUNT", "0")

	_, err := FromEnv()
	require.Error(t, err)
	for _, want := range []string{"STORE_DRIVER", "FIXED_SEATS", "DEV_TIME_OFFSET", "SEAT_COUNT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestFromEnv_ExpireSchedule(t *testing.T) {
	baseEnv(t)
	t.Setenv("EXPIRE_SCHEDULE", "")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.ExpireSchedule, "empty value disables the in-process sweep")

	t.Setenv("EXPIRE_SCHEDULE", "0 * * * *")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "0 * * * *", cfg.ExpireSchedule)
}

func TestFromEnv_EmptyFixedSeats(t *testing.T) {
	baseEnv(t)
	t.Setenv("FIXED_SEATS", "")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.FixedSeats)
}

func TestIsProduction(t *testing.T) {
	assert.True(t, Config{Env: "Production"}.IsProduction())
	assert.True(t, Config{Env: "prod"}.IsProduction())
	assert.False(t, Config{Env: "staging"}.IsProduction())
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_KEY_STRATEGY", "IP")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, "ip", cfg.KeyStrategy)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_TLS", "1")
	cfg := LoadRedisConfig()
	assert.Equal(t, "cache:6380", cfg.Addr)
	assert.True(t, cfg.TLS)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	c, err := NewRedisClient(RedisConfig{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_TTL", "-5s")
	t.Setenv("CACHE_PREFIX", "x")
	cfg := LoadCacheConfig()
	assert.Equal(t, 15*time.Second, cfg.TTL)
	assert.Equal(t, "x", cfg.Prefix)
}
