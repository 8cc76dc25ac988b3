package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"vocab/cmd"
	"vocab/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Initialize logging from the environment; command-specific
	// configuration is validated per command so that offline commands
	// (convert, preprocess) work without any backend credentials.
	if err := logger.Setup(loggerConfigFromEnv()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}

func loggerConfigFromEnv() logger.LogConfig {
	cfg := logger.DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_TIME_FORMAT"); v != "" {
		cfg.TimeFormat = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}
