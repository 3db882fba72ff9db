package config

import (
	"os"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port        string
	AllowOrigin string
	DB          PostgresConfig
	JWT         JWTConfig
	Groq        GroqConfig
	Spoonacular SpoonacularConfig
	Stripe      StripeConfig
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Name     string
}

// JWTConfig selects one of two verification modes: a shared HMAC secret
// (Secret) or an issuer JWKS endpoint (Issuer/Audience/JWKSURL).
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	JWKSURL  string
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SpoonacularConfig struct {
	APIKey string
}

type StripeConfig struct {
	SecretKey             string
	WebhookSecret         string
	PriceIDPremiumMonthly string
	FrontendURL           string
}

func LoadConfig() (*Config, error) {
	// NEXTAUTH_SECRET is what the web frontend signs with; MM_JWT_SECRET is
	// the standalone override.
	secret := os.Getenv("MM_JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("NEXTAUTH_SECRET")
	}

	cfg := &Config{
		Port:        getenvDefault("SERVER_PORT", "8080"),
		AllowOrigin: getenvDefault("CORS_ALLOW_ORIGIN", "*"),
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     getenvDefault("POSTGRES_PORT", "5432"),
			Name:     getenvDefault("POSTGRES_DB", "mealmuse"),
		},
		JWT: JWTConfig{
			Secret:   secret,
			Issuer:   os.Getenv("JWT_ISSUER"),
			Audience: os.Getenv("JWT_AUDIENCE"),
			JWKSURL:  os.Getenv("JWT_JWKS_URL"),
		},
		Groq: GroqConfig{
			APIKey:  os.Getenv("GROQ_API_KEY"),
			BaseURL: getenvDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:   getenvDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		Spoonacular: SpoonacularConfig{
			APIKey: os.Getenv("SPOONACULAR_API_KEY"),
		},
		Stripe: StripeConfig{
			SecretKey:             os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret:         os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PriceIDPremiumMonthly: os.Getenv("STRIPE_PRICE_ID_PREMIUM_MONTHLY"),
			FrontendURL:           os.Getenv("STRIPE_FRONTEND_URL"),
		},
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
