package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Shield.Enabled)
	assert.Equal(t, 60, cfg.Shield.RateMax)
	assert.Equal(t, 20, cfg.Shield.RateSuspiciousMax)
	assert.Equal(t, 300, cfg.Shield.RateAdminMax)
	assert.Equal(t, 10, cfg.Shield.BanThreshold)
	assert.Equal(t, 10000, cfg.Shield.MaxTrackedClients)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "9090")
	t.Setenv("PANEL_URL", "http://panel.internal:9000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://panel.internal:9000", cfg.Panel.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestShieldDurationHelpers(t *testing.T) {
	s := ShieldConfig{
		RateWindowSecs:   60,
		BurstWindowMs:    1000,
		BlacklistTTLSecs: 3600,
		SuspicionTTLSecs: 900,
		SpeedWindowSecs:  900,
		SpeedMaxDelayMs:  2000,
	}

	assert.Equal(t, time.Minute, s.RateWindow())
	assert.Equal(t, time.Second, s.BurstWindow())
	assert.Equal(t, time.Hour, s.BlacklistTTL())
	assert.Equal(t, 15*time.Minute, s.SuspicionTTL())
	assert.Equal(t, 15*time.Minute, s.SpeedWindow())
	assert.Equal(t, 2*time.Second, s.SpeedMaxDelay())
}
