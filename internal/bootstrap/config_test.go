package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Session.Secret)
	assert.Equal(t, "http://localhost:5000", cfg.Upstream.BaseURL)
	assert.Equal(t, "http://localhost:5000", cfg.HTTP.AllowedOrigin)
}

func TestLoadConfig_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}
