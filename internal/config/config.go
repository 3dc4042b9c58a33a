// Package config loads application configuration from environment
// variables, optionally seeded from a .env file in development.
package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.  Required variables are enforced
// by must(); tuning knobs fall back to production defaults so a minimal
// environment only needs the credentials.
type Config struct {
	Env  string
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	// JWTSecret is the decoded HS256 key shared with the identity service,
	// provided base64-encoded in JWT_SECRET.
	JWTSecret []byte

	BrokerURL string

	IdentityBaseURL   string
	IdentityServiceID string
	// IdentitySecret signs service-to-service requests and verifies the
	// payment webhook.
	IdentitySecret []byte

	HoldWindow     time.Duration
	ExpiryInterval time.Duration
	SeatMapTTL     time.Duration

	OutboxInterval   time.Duration
	OutboxBatchSize  int
	OutboxMaxRetries int
	OutboxStuckAfter time.Duration
}

// Load reads the environment and returns a Config.  Missing required
// variables abort startup with a fatal log message.
func Load() Config {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:  getenv("APP_ENV", "dev"),
		Port: getenv("APP_PORT", "8080"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret: mustBase64("JWT_SECRET"),

		BrokerURL: brokerURL(),

		IdentityBaseURL:   must("IDENTITY_BASE_URL"),
		IdentityServiceID: getenv("IDENTITY_SERVICE_ID", "seathive-core"),
		IdentitySecret:    mustBase64("IDENTITY_SHARED_SECRET"),

		HoldWindow:     dur("RESERVATION_HOLD_WINDOW", 10*time.Minute),
		ExpiryInterval: dur("RESERVATION_EXPIRY_INTERVAL", time.Minute),
		SeatMapTTL:     dur("SEAT_MAP_CACHE_TTL", time.Minute),

		OutboxInterval:   dur("OUTBOX_DISPATCH_INTERVAL", 10*time.Second),
		OutboxBatchSize:  intenv("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxRetries: intenv("OUTBOX_MAX_RETRIES", 5),
		OutboxStuckAfter: dur("OUTBOX_STUCK_AFTER", 5*time.Minute),
	}
}

// brokerURL assembles the AMQP URL from its parts, honoring BROKER_URL as
// a full override.
func brokerURL() string {
	if u := os.Getenv("BROKER_URL"); u != "" {
		return u
	}
	host := must("BROKER_HOST")
	port := getenv("BROKER_PORT", "5672")
	user := getenv("BROKER_USER", "guest")
	pass := getenv("BROKER_PASS", "guest")
	vhost := getenv("BROKER_VHOST", "/")
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s", user, pass, host, port, vhost)
}

// must retrieves a required environment variable or aborts startup.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustBase64 retrieves a required variable and decodes it from base64.
func mustBase64(key string) []byte {
	s := must(key)
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		log.Fatalf("invalid base64 in %s: %v", key, err)
	}
	return b
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intenv(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func dur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
