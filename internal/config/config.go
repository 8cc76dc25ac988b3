// Package config loads the vocab CLI configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"vocab/internal/logger"
)

// Vision backend identifiers accepted in VISION_BACKEND.
const (
	BackendOpenAI       = "openai"
	BackendGoogleVision = "googlevision"
)

type Config struct {
	// Vision backend selection
	VisionBackend string

	// OpenAI-compatible backend (also covers local Ollama servers)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	VisionModel   string

	// Google Cloud backend
	GoogleCloudProject string

	// Output locations
	OutputCSV  string
	LedgerPath string

	// Preprocessing preset name: default, fast, quality, ocr, off
	PreprocessPreset string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		VisionBackend:      strings.ToLower(getEnv("VISION_BACKEND", BackendOpenAI)),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		VisionModel:        getEnv("VISION_MODEL", "gpt-4o"),
		GoogleCloudProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),
		OutputCSV:          getEnv("VOCAB_OUTPUT_CSV", "anki_cards.csv"),
		LedgerPath:         getEnv("VOCAB_LEDGER_PATH", ".vocab_ledger.json"),
		PreprocessPreset:   getEnv("VOCAB_PREPROCESS_PRESET", "default"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:      getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:          getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.VisionBackend {
	case BackendOpenAI:
		// A local Ollama server accepts any key, but the go-openai client
		// requires a non-empty one.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when VISION_BACKEND=%s", BackendOpenAI)
		}
	case BackendGoogleVision:
		// Credentials are resolved later from GOOGLE_CREDENTIALS /
		// GOOGLE_APPLICATION_CREDENTIALS / application default credentials.
	default:
		return fmt.Errorf("unknown VISION_BACKEND %q (expected %s or %s)",
			c.VisionBackend, BackendOpenAI, BackendGoogleVision)
	}
	if c.OutputCSV == "" {
		return fmt.Errorf("VOCAB_OUTPUT_CSV must not be empty")
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("VOCAB_LEDGER_PATH must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
