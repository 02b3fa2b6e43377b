package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds everything read from the environment. Defaults are
// chosen so the server runs out of the box with no .env file.
type Config struct {
	Port         string
	GinMode      string
	InitialCash  decimal.Decimal
	OrderWorkers int
	PriceTick    time.Duration
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", ""),
		InitialCash:  getEnvDecimal("INITIAL_CASH", decimal.NewFromInt(100000)),
		OrderWorkers: getEnvInt("ORDER_WORKERS", 5),
		PriceTick:    time.Duration(getEnvInt("PRICE_TICK_MS", 1000)) * time.Millisecond,
	}
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		return defaultValue
	}
	return d
}
