package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"parking_db"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// RabbitURL empty disables both the catalog consumer and event publishing.
	RabbitURL string `envconfig:"RABBIT_URL"`

	// RedisAddr empty disables the availability cache.
	RedisAddr            string        `envconfig:"REDIS_ADDR"`
	RedisPassword        string        `envconfig:"REDIS_PASSWORD"`
	AvailabilityCacheTTL time.Duration `envconfig:"AVAILABILITY_CACHE_TTL" default:"30s"`

	PaymentGateway    string `envconfig:"PAYMENT_GATEWAY" default:"none"`
	OmisePublicKey    string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey    string `envconfig:"OMISE_SECRET_KEY"`
	MidtransServerKey string `envconfig:"MIDTRANS_SERVER_KEY"`
	MidtransEnv       string `envconfig:"MIDTRANS_ENV" default:"sandbox"`

	DefaultCurrency string `envconfig:"DEFAULT_CURRENCY" default:"LKR"`
	LegacyCardMerge bool   `envconfig:"LEGACY_CARD_MERGE" default:"false"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return &cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
