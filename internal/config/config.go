package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-driven setting used by the checkout flow,
// the mock API server and the smoke-test CLI.
type Config struct {
	// Backend API
	APIBase        string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Finix vendor SDK
	FinixSDKURL        string
	FinixApplicationID string
	FinixEnvironment   string // "sandbox" or "live"
	FinixMerchantID    string
	FraudEnabled       bool

	// Demo mode
	DemoMode        bool
	DemoStorePath   string
	DemoSuccessRate float64

	// Mock server
	Port string
}

// New reads configuration from the environment, applying defaults that match
// the sandbox setup.
func New() *Config {
	return &Config{
		APIBase:        getEnv("API_BASE", "http://localhost:3001"),
		RequestTimeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		RetryAttempts:  getEnvAsInt("API_RETRY_ATTEMPTS", 3),
		RetryBaseDelay: getEnvAsDuration("API_RETRY_DELAY", time.Second),

		FinixSDKURL:        getEnv("FINIX_SDK_URL", "https://js.finix.com/v/1/finix.js"),
		FinixApplicationID: getEnv("FINIX_APPLICATION_ID", ""),
		FinixEnvironment:   getEnv("FINIX_ENVIRONMENT", "sandbox"),
		FinixMerchantID:    getEnv("FINIX_MERCHANT_ID", ""),
		FraudEnabled:       getEnvAsBool("FINIX_FRAUD_ENABLED", true),

		DemoMode:        getEnvAsBool("DEMO_MODE", false),
		DemoStorePath:   getEnv("DEMO_STORE_PATH", "bogle_demo_store_v1.json"),
		DemoSuccessRate: getEnvAsFloat("DEMO_SUCCESS_RATE", 1.0),

		Port: getEnv("PORT", "3001"),
	}
}

// IsProduction reports whether the vendor environment is the live one. Stub
// tokenization must be refused when this is true.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.FinixEnvironment, "live") ||
		strings.EqualFold(c.FinixEnvironment, "production")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
