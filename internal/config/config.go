package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// Conversation pacing.
	ReplyDelay     time.Duration
	LocateTimeout  time.Duration
	SessionIdleTTL time.Duration

	// Help-request storage. An empty DatabaseURL keeps requests in memory.
	DatabaseURL      string
	DatabaseMaxConns int32
	SnowflakeNode    int64

	// Help-request fan-out. No brokers disables publishing.
	KafkaBrokers   []string
	KafkaHelpTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	replyDelay, err := parseDuration("REPLY_DELAY", "1s", true)
	if err != nil {
		return nil, err
	}
	locateTimeout, err := parseDuration("LOCATE_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	idleTTL, err := parseDuration("SESSION_IDLE_TTL", "30m", false)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	maxConns, err := parseInt("DATABASE_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		return nil, errors.New("DATABASE_MAX_CONNS must be positive")
	}

	node, err := parseInt("SNOWFLAKE_NODE", 1)
	if err != nil {
		return nil, err
	}
	if node < 0 || node > 1023 {
		return nil, fmt.Errorf("SNOWFLAKE_NODE must be between 0 and 1023, got %d", node)
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		AllowedOrigins:  parseList(sharedcfg.EnvOrDefault("ALLOWED_ORIGINS", "*")),

		ReplyDelay:     replyDelay,
		LocateTimeout:  locateTimeout,
		SessionIdleTTL: idleTTL,

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseMaxConns: int32(maxConns),
		SnowflakeNode:    int64(node),

		KafkaBrokers:   brokers,
		KafkaHelpTopic: sharedcfg.EnvOrDefault("KAFKA_HELP_TOPIC", "flood-help-requests"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaHelpTopic == "" {
		return nil, errors.New("KAFKA_HELP_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// PublishingEnabled reports whether help requests are forwarded to Kafka.
func (c *Config) PublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
