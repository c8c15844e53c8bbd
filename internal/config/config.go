package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING"`
	MigrationsPath     string `envconfig:"MIGRATIONS_PATH" default:"./migrations"`
	RedisAddr          string `envconfig:"REDIS_ADDR"`

	// Identity provider settings. When the URL or key is missing (or still a
	// placeholder from the env template), the app runs with the in-memory demo
	// auth backend instead.
	AuthProviderURL string `envconfig:"AUTH_PROVIDER_URL"`
	AuthProviderKey string `envconfig:"AUTH_PROVIDER_KEY"`
	JWTSecret       string `envconfig:"JWT_SECRET" default:"skycast-demo-secret"`

	DemoEmail    string `envconfig:"DEMO_EMAIL" default:"demo@skycast.app"`
	DemoPassword string `envconfig:"DEMO_PASSWORD" default:"demo1234"`

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePricePremium  string `envconfig:"STRIPE_PRICE_PREMIUM"`
	StripeSuccessURL    string `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:3000/premium?status=success"`
	StripeCancelURL     string `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:3000/premium?status=cancel"`

	GeocodingBaseURL string        `envconfig:"GEOCODING_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1"`
	ForecastBaseURL  string        `envconfig:"FORECAST_BASE_URL" default:"https://api.open-meteo.com/v1"`
	ForecastCacheTTL time.Duration `envconfig:"FORECAST_CACHE_TTL" default:"10m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LiveAuthConfigured reports whether a real identity provider is configured.
// Placeholder values left over from the env template count as absent.
func (c *Config) LiveAuthConfigured() bool {
	return !isPlaceholder(c.AuthProviderURL) && !isPlaceholder(c.AuthProviderKey)
}

func isPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	upper := strings.ToUpper(v)
	return strings.HasPrefix(upper, "YOUR_") || strings.Contains(upper, "CHANGEME") || upper == "TODO"
}
