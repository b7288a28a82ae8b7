// src/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Deriverse / Solana settings
	RPCEndpoint   string
	ProgramID     string
	EngineVersion int

	// Acquisition policy
	AcquisitionTimeout time.Duration
	InstrumentCacheTTL time.Duration
	MockFillerTrades   int
	GlobalSampleLimit  int

	// HTTP surface
	AllowedOrigins    []string
	RateLimitInterval time.Duration
	RateLimitBurst    int

	// Frontend URL for reference (e.g., CORS)
	FrontendBaseURL string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory (common when running from /backend)
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	// --- Deriverse engine settings ---
	rpcEndpoint := getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	programID := getEnv("DERIVERSE_PROGRAM_ID", "Drvrseg8AQLP8B96DBGmHRjFGviFNYTkHueY9g3k27Gu")
	engineVersion := getEnvAsInt("DERIVERSE_ENGINE_VERSION", 12)

	// --- Acquisition policy ---
	// The external boundary defines no timeout of its own; expiry is treated
	// as a retrieval failure and resolves to the mock fallback.
	acquisitionTimeout := getEnvAsDuration("ACQUISITION_TIMEOUT", 8*time.Second)
	instrumentCacheTTL := getEnvAsDuration("INSTRUMENT_CACHE_TTL", 5*time.Minute)
	mockFillerTrades := getEnvAsInt("MOCK_FILLER_TRADES", 35)
	globalSampleLimit := getEnvAsInt("GLOBAL_SAMPLE_LIMIT", 50)

	// --- HTTP surface ---
	frontendBaseURL := getEnv("APP_BASE_URL", "http://localhost:3000")
	allowedOrigins := strings.Split(getEnv("ALLOWED_ORIGINS", frontendBaseURL), ",")
	rateLimitInterval := getEnvAsDuration("RATE_LIMIT_INTERVAL", 100*time.Millisecond)
	rateLimitBurst := getEnvAsInt("RATE_LIMIT_BURST", 30)

	// --- Populate the Global Config Struct ---
	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./deriverse.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		RPCEndpoint:   rpcEndpoint,
		ProgramID:     programID,
		EngineVersion: engineVersion,

		AcquisitionTimeout: acquisitionTimeout,
		InstrumentCacheTTL: instrumentCacheTTL,
		MockFillerTrades:   mockFillerTrades,
		GlobalSampleLimit:  globalSampleLimit,

		AllowedOrigins:    allowedOrigins,
		RateLimitInterval: rateLimitInterval,
		RateLimitBurst:    rateLimitBurst,

		FrontendBaseURL: frontendBaseURL,
	}

	log.Printf("Configuration loaded. Port: %s, RPC: %s, EngineVersion: %d",
		Cfg.Port, Cfg.RPCEndpoint, Cfg.EngineVersion)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid integer for %s: '%s'. Using default %d.", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid duration for %s: '%s'. Using default %s.", key, valueStr, fallback)
		return fallback
	}
	return value
}
