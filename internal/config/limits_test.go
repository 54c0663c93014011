package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLimitsHolderFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewLimitsHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultLimits(), holder.Get())
}

func TestNewLimitsHolderEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HUSHBOX_LIMITS_MESSAGE_SEND_BURST", "42")

	holder, err := NewLimitsHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 42, holder.Get().MessageSend.Burst)
	assert.Equal(t, DefaultLimits().Signin, holder.Get().Signin)
}

func TestValidateLimitsRejectsNonPositive(t *testing.T) {
	limits := DefaultLimits()
	limits.Signin.Burst = 0
	assert.Error(t, validateLimits(limits))
}

func TestLoadDefaultsOutsideProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg := Load()
	assert.Equal(t, devJWTSecret, cfg.AuthJWTSecret)
	assert.False(t, cfg.AuthCookieSecure)
}

func TestLoadProductionForcesSecureCookies(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_JWT_SECRET", "prod-secret")
	t.Setenv("AUTH_COOKIE_SECURE", "false")

	cfg := Load()
	assert.True(t, cfg.AuthCookieSecure)
	assert.Equal(t, "prod-secret", cfg.AuthJWTSecret)
}
