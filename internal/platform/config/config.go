package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr               string
	LogLevel           string
	DatabaseURL        string
	JWTSigningKey      string
	JWTIssuer          string
	TxTimeout          time.Duration
	DocumentPolicyFile string
	Redis              RedisConfig
	Kafka              KafkaConfig
	Gate               GateConfig
	RateLimit          RateLimitConfig
}

// RedisConfig holds the gate cache connection. An empty URL disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the decision event producer. No brokers means decisions
// are only logged by the relay.
type KafkaConfig struct {
	Brokers       []string
	DecisionTopic string
	RelayInterval time.Duration
	RelayBatch    int
}

// RateLimitConfig bounds mutations per actor per minute.
type RateLimitConfig struct {
	Disabled           bool
	WritesPerMinute    int
	DecisionsPerMinute int
}

type GateConfig struct {
	CacheTTL       time.Duration
	SubmissionURL  string
	ExemptPrefixes []string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:               getString("KYC_ADDR", ":8080"),
		LogLevel:           getString("KYC_LOG_LEVEL", "info"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSigningKey:      getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:          getString("JWT_ISSUER", "kycgate"),
		DocumentPolicyFile: os.Getenv("DOCUMENT_POLICY_FILE"),
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			DecisionTopic: getString("KAFKA_DECISION_TOPIC", "verification.decisions"),
		},
		RateLimit: RateLimitConfig{
			Disabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
		},
		Gate: GateConfig{
			SubmissionURL:  getString("SUBMISSION_URL", "/kyc/submit"),
			ExemptPrefixes: splitList(getString("GATE_EXEMPT_PREFIXES", "/kyc/,/auth/")),
		},
	}

	var err error
	if cfg.TxTimeout, err = getDuration("TX_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Gate.CacheTTL, err = getDuration("GATE_CACHE_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Kafka.RelayInterval, err = getDuration("OUTBOX_RELAY_INTERVAL", time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Kafka.RelayBatch, err = getInt("OUTBOX_RELAY_BATCH", 100); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.WritesPerMinute, err = getInt("RATE_LIMIT_WRITES_PER_MINUTE", 60); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.DecisionsPerMinute, err = getInt("RATE_LIMIT_DECISIONS_PER_MINUTE", 120); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = getDuration("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
