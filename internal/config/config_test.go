package config_test

import (
	"testing"
	"time"

	"github.com/nikolayk812/cartajax/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CARTAJAX_STOREFRONT_URL", "https://shop.example/products/1/")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "fa", cfg.Language)
	assert.Equal(t, 2500*time.Millisecond, cfg.ToastDismissDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.ToastFadeDuration)
	assert.Equal(t, 2*time.Second, cfg.ToastRemovalFallback)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "cartajax", cfg.ServiceName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CARTAJAX_STOREFRONT_URL", "http://localhost:8000/")
	t.Setenv("CARTAJAX_LANGUAGE", "en-US")
	t.Setenv("CARTAJAX_TOAST_DISMISS_DELAY", "1s")
	t.Setenv("CARTAJAX_REQUEST_TIMEOUT", "5s")
	t.Setenv("CARTAJAX_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "en-US", cfg.Language)
	assert.Equal(t, time.Second, cfg.ToastDismissDelay)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("CARTAJAX_TOAST_DISMISS_DELAY", "soon")

	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := config.Config{StorefrontURL: "https://shop.example/", Language: "fa"}

	tests := []struct {
		name      string
		mutate    func(*config.Config)
		wantError string
	}{
		{
			name:   "valid: ok",
			mutate: func(*config.Config) {},
		},
		{
			name:      "empty url: error",
			mutate:    func(c *config.Config) { c.StorefrontURL = "" },
			wantError: "storefront URL is empty",
		},
		{
			name:      "ftp url: error",
			mutate:    func(c *config.Config) { c.StorefrontURL = "ftp://shop.example/" },
			wantError: "storefront URL scheme[ftp] is not http(s)",
		},
		{
			name:      "negative delay: error",
			mutate:    func(c *config.Config) { c.ToastDismissDelay = -time.Second },
			wantError: "durations must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}
