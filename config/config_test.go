package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigReadsEnvironmentWithoutConfigFile(t *testing.T) {
	t.Setenv("ZARINPAL_MERCHANT_ID", "m-env-1")
	t.Setenv("ZARINPAL_BASE_URL", "https://sandbox.zarinpal.com")
	t.Setenv("ZARINPAL_CALLBACK_URL", "https://example.com/api/bookings/verify")
	t.Setenv("ADMIN_TOKEN", "env-admin-token")
	t.Setenv("GOOGLE_CLIENT_ID", "client-1")

	LoadConfig()

	// Env values must survive an env-only deployment with no config.yaml.
	assert.Equal(t, "m-env-1", AppConfig.ZarinpalMerchantID)
	assert.Equal(t, "https://sandbox.zarinpal.com", AppConfig.ZarinpalBaseURL)
	assert.Equal(t, "https://example.com/api/bookings/verify", AppConfig.ZarinpalCallbackURL)
	assert.Equal(t, "env-admin-token", AppConfig.AdminToken)
	assert.Equal(t, "client-1", AppConfig.GoogleClientID)
}

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()

	assert.Equal(t, "8080", AppConfig.AppPort)
	assert.Equal(t, "primary", AppConfig.GoogleCalendarID)
	assert.Equal(t, 2, AppConfig.RedisQueueDB)
}
