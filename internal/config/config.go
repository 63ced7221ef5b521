package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

type Config struct {
	StorefrontURL string `env:"CARTAJAX_STOREFRONT_URL"`
	Language      string `env:"CARTAJAX_LANGUAGE" envDefault:"fa"`

	ToastDismissDelay    time.Duration `env:"CARTAJAX_TOAST_DISMISS_DELAY" envDefault:"2500ms"`
	ToastFadeDuration    time.Duration `env:"CARTAJAX_TOAST_FADE_DURATION" envDefault:"300ms"`
	ToastRemovalFallback time.Duration `env:"CARTAJAX_TOAST_REMOVAL_FALLBACK" envDefault:"2s"`

	// RequestTimeout of 0 leaves requests bounded only by the transport.
	RequestTimeout time.Duration `env:"CARTAJAX_REQUEST_TIMEOUT" envDefault:"0s"`

	LogLevel     string `env:"CARTAJAX_LOG_LEVEL" envDefault:"info"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"cartajax"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.StorefrontURL == "" {
		return fmt.Errorf("storefront URL is empty")
	}

	u, err := url.Parse(c.StorefrontURL)
	if err != nil {
		return fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("storefront URL scheme[%s] is not http(s)", u.Scheme)
	}

	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("language[%s] is not valid: %w", c.Language, err)
	}

	if c.ToastDismissDelay < 0 || c.ToastFadeDuration < 0 || c.ToastRemovalFallback < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	return nil
}
