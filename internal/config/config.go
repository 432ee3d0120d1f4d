package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// origins allowed to call the API with credentials (the local frontend)
	AllowedOrigins []string

	// OTLP collector endpoint, empty disables tracing
	OTLPEndpoint string

	SessionTTL time.Duration
	StaticDir  string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 5000)
	dbURL := buildDBURL()

	return Config{
		Env:            env,
		Port:           port,
		DBURL:          dbURL,
		RedisAddr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		AllowedOrigins: []string{getEnv("FRONTEND_ORIGIN", "http://localhost:5500")},
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", ""),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,
		StaticDir:      getEnv("STATIC_DIR", "web"),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "prodsmart")
	pass := getEnv("DB_PASSWORD", "prodsmart")
	name := getEnv("DB_NAME", "prodsmart")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
		}

		return num
	}
	return fallback
}
