package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"REDIS_URL": "redis://localhost:6379/0",
		"PORT":      "",
		"TAX_BPS":   "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "USD", cfg.Currency)
	require.Equal(t, 0, cfg.TaxBps)
	require.Equal(t, 2*time.Second, cfg.CouponTimeout)
	require.Equal(t, 168*time.Hour, cfg.CartSnapshotTTL)
	require.Equal(t, time.Minute, cfg.CouponRateWindow)
	require.Equal(t, 10, cfg.CouponRateMax)
	require.Equal(t, "klin", cfg.MetricsNamespace)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"REDIS_URL":            "redis://localhost:6379/1",
		"PORT":                 "9090",
		"CURRENCY":             "IDR",
		"TAX_BPS":              "1100",
		"SHIPPING_FEE":         "15",
		"COUPON_DIRECTORY_URL": "https://coupons.example.com",
		"COUPON_TIMEOUT":       "500ms",
		"CART_SNAPSHOT_TTL":    "24h",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "IDR", cfg.Currency)
	require.Equal(t, 1100, cfg.TaxBps)
	require.Equal(t, int64(15), cfg.ShippingFee)
	require.Equal(t, "https://coupons.example.com", cfg.CouponDirectoryURL)
	require.Equal(t, 500*time.Millisecond, cfg.CouponTimeout)
	require.Equal(t, 24*time.Hour, cfg.CartSnapshotTTL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresRedisURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{"REDIS_URL": ""})
	require.Error(t, err)
}

func TestLoadRejectsNegativeAmounts(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"REDIS_URL": "redis://localhost:6379/0",
		"TAX_BPS":   "-1",
	})
	require.Error(t, err)

	_, err = LoadForTests(map[string]string{
		"REDIS_URL":    "redis://localhost:6379/0",
		"TAX_BPS":      "",
		"SHIPPING_FEE": "-5",
	})
	require.Error(t, err)
}

func TestBadDurationFallsBack(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"REDIS_URL":      "redis://localhost:6379/0",
		"TAX_BPS":        "",
		"SHIPPING_FEE":   "",
		"COUPON_TIMEOUT": "soon",
	})
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.CouponTimeout)
}
