package explorer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration.
type Config struct {
	APIKey     string
	DBPath     string
	CatalogURL string
	LogLevel   string
}

// LoadConfig reads envFile (if present) into the process environment and then
// builds the configuration from environment variables. An empty envFile skips
// the file.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env (%s): %w", envFile, err)
		}
	}

	cfg := &Config{
		APIKey:     getEnv("GOOGLE_BOOKS_API_KEY", ""),
		DBPath:     getEnv("BOOKS_DB_PATH", "books_app.db"),
		CatalogURL: getEnv("BOOKS_API_URL", "https://www.googleapis.com/books/v1"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("BOOKS_DB_PATH cannot be empty")
	}
	if cfg.CatalogURL == "" {
		return nil, fmt.Errorf("BOOKS_API_URL cannot be empty")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// NewLogger returns a stderr logger at the given level, defaulting to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
