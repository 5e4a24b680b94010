package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server          ServerConfig
	Database        DatabaseConfig
	Auth            AuthConfig
	ExpressCheckout ExpressCheckoutConfig
	Pro             ProConfig
	Standard        StandardConfig
	IPN             IPNConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// BaseURL is the public origin of this service; return, cancel and IPN
	// URLs are built from it.
	BaseURL string
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig guards the merchant operations (capture, void, refund, vault).
type AuthConfig struct {
	Secret string
	Issuer string
}

// ExpressCheckoutConfig holds the classic NVP signature credentials.
type ExpressCheckoutConfig struct {
	User      string
	Pwd       string
	Signature string
	// TestMode selects the sandbox endpoints for the whole credential set.
	TestMode bool
	// Capture true finalizes checkouts as sales, false as authorizations.
	Capture bool
	// SendShippingAddress transmits a single shipping profile to PayPal.
	SendShippingAddress bool
}

// ProConfig holds the PaymentsPro REST app credentials.
type ProConfig struct {
	ClientID string
	Secret   string
	TestMode bool
}

// StandardConfig is the redirect-only gateway setup.
type StandardConfig struct {
	Business string
	TestMode bool
}

type IPNConfig struct {
	// ValidateTimeout bounds the authenticity round-trip to PayPal; a
	// timeout counts as validation failure.
	ValidateTimeout time.Duration
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			BaseURL:      getenv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "paypalgw:paypalgw@tcp(localhost:3306)/paypalgw?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Auth: AuthConfig{
			Secret: getenv("MERCHANT_API_SECRET", "change-me-in-production"),
			Issuer: "paypalgw",
		},
		ExpressCheckout: ExpressCheckoutConfig{
			User:                getenv("PAYPAL_API_USER", ""),
			Pwd:                 getenv("PAYPAL_API_PWD", ""),
			Signature:           getenv("PAYPAL_API_SIGNATURE", ""),
			TestMode:            getenvBool("PAYPAL_TEST_MODE", true),
			Capture:             getenvBool("PAYPAL_CAPTURE", true),
			SendShippingAddress: getenvBool("PAYPAL_SEND_SHIPPING", false),
		},
		Pro: ProConfig{
			ClientID: getenv("PAYPAL_CLIENT_ID", ""),
			Secret:   getenv("PAYPAL_CLIENT_SECRET", ""),
			TestMode: getenvBool("PAYPAL_TEST_MODE", true),
		},
		Standard: StandardConfig{
			Business: getenv("PAYPAL_BUSINESS_EMAIL", ""),
			TestMode: getenvBool("PAYPAL_TEST_MODE", true),
		},
		IPN: IPNConfig{
			ValidateTimeout: 10 * time.Second,
		},
	}
}
