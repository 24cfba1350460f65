// Package config provides configuration loading and management for the application.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// Base URLs for the protocol quote/status APIs. An empty URL keeps the
	// adapter on its built-in fallback configuration. Hop has no quote or
	// status API wired, so it carries no URL here.
	StargateURL string
	AcrossURL   string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// API keys for the protocol APIs, keyed by protocol name
	APIKeys map[string]string

	// Per-adapter quote timeout during route fan-out
	AdapterTimeout time.Duration

	// Amounts above this threshold trigger a split-transfer warning
	LargeTransferThreshold decimal.Decimal

	// Chain names whose involvement triggers an off-peak warning
	HighFeeChains []string

	// Default protocol fee rate used by the gas estimator
	BridgeFeeRate decimal.Decimal

	// Source-chain gas cost (USD) above which a high-gas recommendation is issued
	HighGasCeilingUSD decimal.Decimal

	// Circuit breaker settings for adapter health tracking
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration

	// Rate limiting for the tool endpoints
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load creates a new Config from environment variables
func Load() Config {
	apiKeys := map[string]string{}
	if raw := os.Getenv("API_KEYS"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &apiKeys)
	}

	return Config{
		Port:                    GetEnvOrDefault("PORT", "8080"),
		StargateURL:             GetEnvOrDefault("STARGATE_URL", ""),
		AcrossURL:               GetEnvOrDefault("ACROSS_URL", ""),
		OtelEndpoint:            GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		APIKeys:                 apiKeys,
		AdapterTimeout:          GetEnvAsDuration("ADAPTER_TIMEOUT", 10*time.Second),
		LargeTransferThreshold:  GetEnvAsDecimal("LARGE_TRANSFER_THRESHOLD", "10000"),
		HighFeeChains:           GetEnvAsList("HIGH_FEE_CHAINS", "ethereum"),
		BridgeFeeRate:           GetEnvAsDecimal("BRIDGE_FEE_RATE", "0.0005"),
		HighGasCeilingUSD:       GetEnvAsDecimal("HIGH_GAS_CEILING_USD", "25"),
		BreakerFailureThreshold: GetEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerCooldown:         GetEnvAsDuration("BREAKER_COOLDOWN", 2*time.Minute),
		RateLimitRPS:            GetEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:          GetEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsDecimal retrieves an environment variable as a decimal with a default value.
// The default must be a valid decimal string.
func GetEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	if value, exists := GetEnv(key); exists {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(defaultValue)
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvAsList retrieves an environment variable as a comma-separated list
func GetEnvAsList(key string, defaultValue string) []string {
	raw := GetEnvOrDefault(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
