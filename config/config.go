package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL        string
	APIKey       string
	AccessKey    string
	Port         string
	ImportConfig string
	LogLevel     string
	AdminKey     string
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to read .env file")
	}

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("POLYGON_API_KEY environment variable is required")
	}

	return &Config{
		PGURL:        pgURL,
		APIKey:       apiKey,
		AccessKey:    os.Getenv("POLYGON_ACCESS_KEY"),
		Port:         getenv("PORT", "8080"),
		ImportConfig: getenv("IMPORT_CONFIG", "import.yaml"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		AdminKey:     os.Getenv("ADMIN_KEY"),
	}, nil
}

// ConfigureLogging applies LogLevel to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
