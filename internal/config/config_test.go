package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, float64(20), cfg.API.RateLimit)
	assert.Equal(t, 40, cfg.API.RateBurst)
	assert.Equal(t, 8080, cfg.Stub.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://pos.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pos.example.com", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("API_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
