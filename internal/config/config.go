package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EventsRedis = "redis"
	EventsKafka = "kafka"
)

type HTTPConfig struct {
	Port          string
	CORSOrigins   []string
	PublicBaseURL string
}

type GRPCConfig struct {
	Port string
}

type EventsConfig struct {
	Backend      string
	KafkaBrokers []string
	KafkaTopic   string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type Config struct {
	HTTP              HTTPConfig
	GRPC              GRPCConfig
	DatabaseURL       string
	RedisURL          string
	Events            EventsConfig
	JWT               JWTConfig
	DashboardCacheTTL time.Duration
	LogLevel          string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.LookupEnv)
}

func fromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:          get("HTTP_PORT", "8080"),
			CORSOrigins:   splitList(get("CORS_ORIGINS", "*")),
			PublicBaseURL: strings.TrimRight(get("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		GRPC:        GRPCConfig{Port: get("GRPC_PORT", "9090")},
		DatabaseURL: get("DATABASE_URL", ""),
		RedisURL:    get("REDIS_URL", ""),
		Events: EventsConfig{
			Backend:      strings.ToLower(get("EVENTS_BACKEND", EventsRedis)),
			KafkaBrokers: splitList(get("KAFKA_BROKERS", "")),
			KafkaTopic:   get("KAFKA_TOPIC", "laundry.events"),
		},
		JWT:      JWTConfig{Secret: get("JWT_SECRET", "")},
		LogLevel: get("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.JWT.TTL, err = time.ParseDuration(get("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	if cfg.DashboardCacheTTL, err = time.ParseDuration(get("DASHBOARD_CACHE_TTL", "60s")); err != nil {
		return nil, fmt.Errorf("DASHBOARD_CACHE_TTL: %w", err)
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, fmt.Errorf("DATABASE_URL is required")
	case cfg.RedisURL == "":
		return nil, fmt.Errorf("REDIS_URL is required")
	case cfg.JWT.Secret == "":
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.Events.Backend {
	case EventsRedis:
	case EventsKafka:
		if len(cfg.Events.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	default:
		return nil, fmt.Errorf("unknown EVENTS_BACKEND %q", cfg.Events.Backend)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
