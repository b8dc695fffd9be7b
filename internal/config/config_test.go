package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err, "a missing .env must not fail the load")

	assert.Equal(t, "session", cfg.Session.Name)
	assert.Equal(t, 86400*7, cfg.Session.MaxAge)
	assert.Equal(t, "public/uploads", cfg.Upload.Dir)
	assert.Equal(t, 800, cfg.Upload.MaxWidth)

	// An unconfigured deploy must not start with a limiter that
	// rejects every request.
	assert.Greater(t, cfg.RateLimit.GeneralRPS, 0.0)
	assert.Greater(t, cfg.RateLimit.GeneralBurst, 0)
}
