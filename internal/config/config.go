package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	DatabaseDSN  string
	KafkaBrokers []string
	KafkaGroup   string
	TxTimeout    time.Duration
}

// Load reads configuration from the environment, loading a local .env file
// first when one exists.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	txTimeout, err := time.ParseDuration(getEnv("RENTAL_TX_TIMEOUT", "5s"))
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:         ":" + getEnv("RENTAL_SERVICE_PORT", "8080"),
		AppEnv:       getEnv("APP_ENV", "development"),
		DatabaseDSN:  getEnv("RENTAL_DATABASE_DSN", "rental.db"),
		KafkaBrokers: strings.Split(getEnv("RENTAL_KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaGroup:   getEnv("RENTAL_KAFKA_GROUP", "rental-service"),
		TxTimeout:    txTimeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
