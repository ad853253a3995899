package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Addr            string        `mapstructure:"SERVER_ADDR"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTTTL          time.Duration `mapstructure:"JWT_TTL"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	CORSOrigins     string        `mapstructure:"CORS_ORIGINS"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	AnalyticsCacheTTL time.Duration `mapstructure:"ANALYTICS_CACHE_TTL"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	GCSBucket        string `mapstructure:"GCS_BUCKET"`
	GCSPublicBaseURL string `mapstructure:"GCS_PUBLIC_BASE_URL"`

	PayPalBaseURL  string `mapstructure:"PAYPAL_BASE_URL"`
	PayPalClientID string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalSecret   string `mapstructure:"PAYPAL_SECRET"`
	ClientURL      string `mapstructure:"CLIENT_URL"`

	SendGridAPIKey string `mapstructure:"SENDGRID_API_KEY"`
	MailFrom       string `mapstructure:"MAIL_FROM"`

	// FirebaseProjectID enables Google sign-in; credentials come from GOOGLE_APPLICATION_CREDENTIALS.
	FirebaseProjectID string `mapstructure:"FIREBASE_PROJECT_ID"`

	TaxRateRaw string          `mapstructure:"ORDER_TAX_RATE"`
	TaxRate    decimal.Decimal `mapstructure:"-"`
}

var defaults = map[string]any{
	"SERVER_ADDR":         ":8080",
	"DATABASE_URL":        "",
	"JWT_SECRET":          "",
	"JWT_TTL":             "72h",
	"LOG_LEVEL":           "info",
	"CORS_ORIGINS":        "*",
	"SHUTDOWN_TIMEOUT":    "10s",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"ANALYTICS_CACHE_TTL": "1m",
	"KAFKA_BROKERS":       "",
	"KAFKA_ORDER_TOPIC":   "orders",
	"GCS_BUCKET":          "",
	"GCS_PUBLIC_BASE_URL": "https://storage.googleapis.com",
	"PAYPAL_BASE_URL":     "https://api-m.sandbox.paypal.com",
	"PAYPAL_CLIENT_ID":    "",
	"PAYPAL_SECRET":       "",
	"CLIENT_URL":          "http://localhost:3000",
	"SENDGRID_API_KEY":    "",
	"MAIL_FROM":           "",
	"FIREBASE_PROJECT_ID": "",
	"ORDER_TAX_RATE":      "0",
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	rate, err := decimal.NewFromString(cfg.TaxRateRaw)
	if err != nil {
		return Config{}, errors.New("ORDER_TAX_RATE must be a decimal")
	}
	cfg.TaxRate = rate
	return cfg, nil
}

// Brokers splits KAFKA_BROKERS; an empty value yields nil.
func (c Config) Brokers() []string {
	if strings.TrimSpace(c.KafkaBrokers) == "" {
		return nil
	}
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
