package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jime0083/BatsuGaku/apperr"
)

// Config holds every secret and setting the process needs. Values are read
// once at cold start; nothing re-reads the environment after Load returns.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	MongoURI string `env:"MONGO_URI,required"`

	// Base64-encoded 32-byte key for AES-256-GCM token encryption.
	EncryptionKey string `env:"SECRET_ENCRYPTION_KEY,required"`

	JWTSecret      string `env:"JWT_SECRET,required"`
	InternalAPIKey string `env:"INTERNAL_API_KEY,required"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID,required"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET,required"`
	XClientID          string `env:"X_CLIENT_ID,required"`
	XClientSecret      string `env:"X_CLIENT_SECRET,required"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `env:"STRIPE_PRICE_ID"`
	CheckoutSuccessURL  string `env:"CHECKOUT_SUCCESS_URL" envDefault:"batsugaku://subscription/success"`
	CheckoutCancelURL   string `env:"CHECKOUT_CANCEL_URL" envDefault:"batsugaku://subscription/canceled"`

	FCMServerKey string `env:"FCM_SERVER_KEY"`

	// IANA zone used for day-key derivation everywhere.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Tokyo"`

	EvaluatorWorkers int `env:"EVALUATOR_WORKERS" envDefault:"4"`
}

// Load reads .env (if present) and the process environment, then validates
// the values that would otherwise fail at first use.
func Load() (*Config, error) {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfiguration, err)
	}

	key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: SECRET_ENCRYPTION_KEY is not valid base64: %v", apperr.ErrConfiguration, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: SECRET_ENCRYPTION_KEY must decode to 32 bytes, got %d", apperr.ErrConfiguration, len(key))
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown TIMEZONE %q: %v", apperr.ErrConfiguration, cfg.Timezone, err)
	}

	return cfg, nil
}
