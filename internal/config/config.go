// internal/config/config.go
//
// Environment-driven configuration. main loads .env (godotenv) first, so
// values there act as defaults under the real environment.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" or "console"

	ClientOrigin string // "*" allows any origin
	DBPath       string // empty keeps history in memory

	JWTSecret          string
	JWTTTL             time.Duration
	ServerPasswordHash string
	RequireToken       bool

	StrictFleet bool

	SendQueue int
	MsgRate   float64 // inbound messages per second per connection
	MsgBurst  int
}

// Load reads the environment.
func Load() Config {
	return Config{
		Port:      getEnv("PORT", "5000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		ClientOrigin: getEnv("CLIENT_ORIGIN", "*"),
		DBPath:       envRaw("DB_PATH", "./data/battleship.db"),

		JWTSecret:          getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTTTL:             time.Duration(envInt("JWT_EXPIRES_HOURS", 12)) * time.Hour,
		ServerPasswordHash: os.Getenv("SERVER_PASSWORD_HASH"),
		RequireToken:       envBool("REQUIRE_TOKEN", false),

		StrictFleet: envBool("STRICT_FLEET", false),

		SendQueue: envInt("SEND_QUEUE", 64),
		MsgRate:   envFloat("MSG_RATE", 20),
		MsgBurst:  envInt("MSG_BURST", 40),
	}
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envRaw is like getEnv but an explicitly empty value is kept.
func envRaw(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil && f > 0 {
		return f
	}
	return def
}

func envBool(k string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return def
}
