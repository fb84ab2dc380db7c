package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.FreeSessionLimit)
	assert.NotNil(t, cfg.PricePlanMap)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FREE_SESSION_LIMIT", "3")
	t.Setenv("LEMONSQUEEZY_WEBHOOK_SECRET", "whsec_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.FreeSessionLimit)
	assert.Equal(t, "whsec_test", cfg.LemonSqueezyWebhookSecret)
}

func TestParsePricePlanMap(t *testing.T) {
	m := parsePricePlanMap("price_pro:pro, price_starter:starter,broken,also:")

	assert.Equal(t, "pro", m["price_pro"])
	assert.Equal(t, "starter", m["price_starter"])
	assert.Len(t, m, 2)
}

func TestParsePricePlanMapEmpty(t *testing.T) {
	m := parsePricePlanMap("")
	assert.Empty(t, m)
}

func TestFreeSessionLimitInvalid(t *testing.T) {
	t.Setenv("FREE_SESSION_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.FreeSessionLimit)
}
