package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "CART_LOCK_TIMEOUT", "ALLOWED_ORIGINS", "REDIS_ADDR", "CHECKOUT_TRUST_CLIENT_TOTAL", "GUEST_CART_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Checkout.TrustClientTotal)
	assert.Equal(t, 720*time.Hour, cfg.Cart.GuestTTL)
	assert.Equal(t, 5*time.Second, cfg.Cart.LockTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CHECKOUT_TRUST_CLIENT_TOTAL", "true")
	t.Setenv("CART_LOCK_TIMEOUT", "750ms")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.Checkout.TrustClientTotal)
	assert.Equal(t, 750*time.Millisecond, cfg.Cart.LockTimeout)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns, "invalid numbers fall back to the default")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "secret",
		DBName:   "safeonlineshop",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=shop password=secret dbname=safeonlineshop sslmode=disable", cfg.DSN())
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 15*time.Minute, parseDuration("soon"))
	assert.Equal(t, 2*time.Hour, parseDuration("2h"))
	assert.False(t, parseBool("maybe"))
	assert.True(t, parseBool("1"))
	assert.Equal(t, []string{}, parseSlice(""))
	assert.Equal(t, []string{"a", "b"}, parseSlice("a,, b ,"))
}
