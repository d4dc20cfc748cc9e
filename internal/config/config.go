// Package config loads service configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs to talk to the POS backend
// and drive the kitchen board.
type Config struct {
	Port         string
	BackendURL   string
	APIToken     string
	RestaurantID string
	SocketURL    string

	PollInterval time.Duration
	Debounce     time.Duration
	Heartbeat    time.Duration
	RetryDelay   time.Duration
}

// Load reads the environment. A missing .env file is not an error; real
// environment variables always win over file values.
func Load() Config {
	godotenv.Load()

	return Config{
		Port:         getenv("PRINTSTUDIO_PORT", "12212"),
		BackendURL:   getenv("POS_BACKEND_URL", "http://localhost:8080"),
		APIToken:     os.Getenv("POS_API_TOKEN"),
		RestaurantID: getenv("POS_RESTAURANT_ID", "default"),
		SocketURL:    os.Getenv("KOT_SOCKET_URL"),

		PollInterval: getduration("KOT_POLL_INTERVAL", 30*time.Second),
		Debounce:     getduration("KOT_DEBOUNCE", 350*time.Millisecond),
		Heartbeat:    getduration("KOT_HEARTBEAT", 10*time.Second),
		RetryDelay:   getduration("KOT_RETRY_DELAY", 3*time.Second),
	}
}

// Addr returns the listen address for the API server.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
