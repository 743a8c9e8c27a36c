// Package config loads process settings from the environment, reading a
// .env file first when one exists.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Defaults assume in-cluster service names.
const (
	DefaultPort            = "4000"
	DefaultMongoHost       = "mongo-service:27017"
	DefaultMongoDB         = "bookreview"
	DefaultRedisURL        = "redis://redis:6379"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the API settings.
type Config struct {
	Port            string
	MongoURI        string
	MongoDB         string
	RedisURL        string
	LogLevel        string
	LogPretty       bool
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and then the environment. Variables already
// set in the environment win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:        Getenv("PORT", DefaultPort),
		MongoDB:     Getenv("MONGO_DB", DefaultMongoDB),
		RedisURL:    Getenv("REDIS_URL", DefaultRedisURL),
		LogLevel:    Getenv("LOG_LEVEL", DefaultLogLevel),
		CORSOrigins: splitList(Getenv("CORS_ORIGINS", "*")),
	}
	cfg.MongoURI = Getenv("MONGO_URI", defaultMongoURI(cfg.MongoDB))

	pretty, err := strconv.ParseBool(Getenv("LOG_PRETTY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}
	cfg.LogPretty = pretty

	timeout, err := time.ParseDuration(Getenv("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout.String()))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// RedisOptions turns RedisURL into client options. Both "redis://host:port/db"
// URLs and bare "host:port" addresses are accepted.
func (c Config) RedisOptions() (*redis.Options, error) {
	return RedisOptions(c.RedisURL)
}

// RedisOptions parses a Redis URL or bare address.
func RedisOptions(raw string) (*redis.Options, error) {
	if !strings.Contains(raw, "://") {
		if raw == "" {
			return nil, fmt.Errorf("redis address is empty")
		}
		return &redis.Options{Addr: raw}, nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return opts, nil
}

// Getenv returns the variable's value or def when unset or empty.
func Getenv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// defaultMongoURI points at the in-cluster service, authenticating against
// the admin database when root credentials are provided.
func defaultMongoURI(db string) string {
	user := os.Getenv("MONGO_INITDB_ROOT_USERNAME")
	if user == "" {
		return "mongodb://" + DefaultMongoHost
	}
	u := url.URL{
		Scheme:   "mongodb",
		User:     url.UserPassword(user, os.Getenv("MONGO_INITDB_ROOT_PASSWORD")),
		Host:     DefaultMongoHost,
		Path:     "/" + db,
		RawQuery: "authSource=admin",
	}
	return u.String()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
