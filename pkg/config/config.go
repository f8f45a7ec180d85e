package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/stockroom/pkg/database"
)

// Config holds the settings shared by the stockroom services
type Config struct {
	ServiceName   string
	Environment   string
	LogLevel      string
	HTTPPort      string
	Database      database.Config
	LockTimeout   time.Duration
	SequenceStore string
	RateLimit     int
	Redis         RedisConfig
	Kafka         KafkaConfig
	Tracing       TracingConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig holds Kafka settings
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	GroupID string
}

// TracingConfig holds Jaeger exporter settings
type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads an optional .env file and builds the configuration for a service.
// defaults carries the per-service values (service name, port, database name).
func Load(defaults Config) *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", defaults.ServiceName),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", defaults.HTTPPort),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", defaults.Database.DBName),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		LockTimeout:   getDuration("SALES_LOCK_TIMEOUT", 5*time.Second),
		SequenceStore: getEnv("SEQUENCE_BACKEND", "postgres"),
		RateLimit:     getInt("RATE_LIMIT_PER_MINUTE", 100),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			CacheTTL: getDuration("CACHE_TTL", time.Minute),
		},
		Kafka: KafkaConfig{
			Enabled: getBool("KAFKA_ENABLED", true),
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			GroupID: getEnv("KAFKA_GROUP_ID", defaults.ServiceName),
		},
		Tracing: TracingConfig{
			Enabled:  getBool("TRACING_ENABLED", true),
			Endpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
