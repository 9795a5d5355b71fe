// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the engine configuration
type Config struct {
	// Schema catalog and learned-mappings store locations
	SchemaPath          string
	LearnedMappingsPath string

	// Header matching
	FuzzyMinScore        float64
	ColumnDeltaThreshold int

	// Data quality
	MissingDataThreshold float64

	// AI capability (AWS Bedrock)
	UseBedrock    bool
	BedrockRegion string
	BedrockModel  string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from a .env file (when present) and
// environment variables
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	cfg := &Config{
		SchemaPath:          getEnv("SCHEMA_PATH", "schemas/canonical.json"),
		LearnedMappingsPath: getEnv("LEARNED_MAPPINGS_PATH", "schemas/learned_mappings.json"),

		FuzzyMinScore:        getEnvAsFloat("FUZZY_MIN_SCORE", 0.6),
		ColumnDeltaThreshold: getEnvAsInt("COLUMN_DELTA_THRESHOLD", 3),

		MissingDataThreshold: getEnvAsFloat("MISSING_DATA_THRESHOLD", 10.0),

		UseBedrock:    getEnvAsBool("USE_BEDROCK", false),
		BedrockRegion: getEnv("BEDROCK_REGION", "us-east-1"),
		BedrockModel:  getEnv("BEDROCK_MODEL", "anthropic.claude-3-haiku-20240307-v1:0"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.SchemaPath == "" {
		return errors.New("schema path is required")
	}

	if c.FuzzyMinScore <= 0 || c.FuzzyMinScore >= 1 {
		return errors.New("fuzzy minimum score must be between 0 and 1 exclusive")
	}

	if c.MissingDataThreshold < 0 || c.MissingDataThreshold > 100 {
		return errors.New("missing data threshold must be a percentage between 0 and 100")
	}

	if c.ColumnDeltaThreshold < 0 {
		return errors.New("column delta threshold cannot be negative")
	}

	if c.UseBedrock && c.BedrockModel == "" {
		return errors.New("bedrock model is required when USE_BEDROCK is enabled")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
