package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	AppName                          string `mapstructure:"APP_NAME"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StripeSecretKey                  string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret              string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePriceStarterMonthly        string `mapstructure:"STRIPE_PRICE_STARTER_MONTHLY"`
	StripePriceStarterYearly         string `mapstructure:"STRIPE_PRICE_STARTER_YEARLY"`
	StripePriceProMonthly            string `mapstructure:"STRIPE_PRICE_PRO_MONTHLY"`
	StripePriceProYearly             string `mapstructure:"STRIPE_PRICE_PRO_YEARLY"`
	StripePricePremiumMonthly        string `mapstructure:"STRIPE_PRICE_PREMIUM_MONTHLY"`
	StripePricePremiumYearly         string `mapstructure:"STRIPE_PRICE_PREMIUM_YEARLY"`
	OpenAIAPIKey                     string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel                      string `mapstructure:"OPENAI_MODEL"`
	RedisAddr                        string `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string `mapstructure:"REDIS_PASSWORD"`
	SMTPHost                         string `mapstructure:"SMTP_HOST"`
	SMTPPort                         string `mapstructure:"SMTP_PORT"`
	SMTPUser                         string `mapstructure:"SMTP_USER"`
	SMTPPass                         string `mapstructure:"SMTP_PASS"`
	SMTPSender                       string `mapstructure:"SMTP_SENDER"`
}

var appConfig *Config

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("APP_NAME", "Creator Project Tracker")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("APP_NAME")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("STRIPE_SECRET_KEY")
	viper.BindEnv("STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("STRIPE_PRICE_STARTER_MONTHLY")
	viper.BindEnv("STRIPE_PRICE_STARTER_YEARLY")
	viper.BindEnv("STRIPE_PRICE_PRO_MONTHLY")
	viper.BindEnv("STRIPE_PRICE_PRO_YEARLY")
	viper.BindEnv("STRIPE_PRICE_PREMIUM_MONTHLY")
	viper.BindEnv("STRIPE_PRICE_PREMIUM_YEARLY")
	viper.BindEnv("OPENAI_API_KEY")
	viper.BindEnv("OPENAI_MODEL")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_PORT")
	viper.BindEnv("SMTP_USER")
	viper.BindEnv("SMTP_PASS")
	viper.BindEnv("SMTP_SENDER")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.ClientURL == "" {
		return nil, errors.New("CLIENT_URL is required")
	}
	// SMTP, Redis and OpenAI are optional: the mailer falls back to logging,
	// the profile cache becomes a no-op, and assistant endpoints return 503.

	appConfig = &cfg
	return appConfig, nil
}

// PriceID resolves a Stripe price ID for a plan and billing cycle.
// Returns an empty string when the combination is not configured.
func (c *Config) PriceID(plan, billingCycle string) string {
	key := strings.ToLower(plan) + "/" + strings.ToLower(billingCycle)
	switch key {
	case "starter/monthly":
		return c.StripePriceStarterMonthly
	case "starter/yearly":
		return c.StripePriceStarterYearly
	case "pro/monthly":
		return c.StripePriceProMonthly
	case "pro/yearly":
		return c.StripePriceProYearly
	case "premium/monthly":
		return c.StripePricePremiumMonthly
	case "premium/yearly":
		return c.StripePricePremiumYearly
	}
	return ""
}

// GetConfig returns the loaded application configuration.
// It panics if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
