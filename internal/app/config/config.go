package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	Env             string
	InternalToken   string
	CORSAllowOrigin string

	StoreDriver   string
	DatabaseURL   string
	RedisURL      string
	StoreMaxBytes int64

	OpenAIBaseURL   string
	OpenAIAPIKey    string
	OpenAIModel     string
	AIRatePerMinute int
	PhoneRegion     string
	SignBaseURL     string

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	SMTPFromName  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// MustLoad reads the environment, after a .env file when one exists.
func MustLoad() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		Env:             env("APP_ENV", "production"),
		InternalToken:   mustEnv("INTERNAL_TOKEN"),
		CORSAllowOrigin: env("CORS_ALLOW_ORIGIN", "*"),

		StoreDriver:   strings.ToLower(env("STORE_DRIVER", "memory")),
		DatabaseURL:   env("DATABASE_URL", ""),
		RedisURL:      env("REDIS_URL", ""),
		StoreMaxBytes: int64(envInt("STORE_MAX_BYTES", 5*1024*1024)),

		OpenAIBaseURL:   env("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:    env("OPENAI_API_KEY", ""),
		OpenAIModel:     env("OPENAI_MODEL", "gpt-4o-mini"),
		AIRatePerMinute: envInt("AI_RATE_PER_MINUTE", 10),
		PhoneRegion:     strings.ToUpper(env("PHONE_REGION", "MX")),
		SignBaseURL:     env("SIGN_BASE_URL", "https://magiadisneyroyal.com"),

		SMTPHost:      env("SMTP_HOST", ""),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUsername:  env("SMTP_USERNAME", ""),
		SMTPPassword:  env("SMTP_PASSWORD", ""),
		SMTPFromEmail: env("SMTP_FROM_EMAIL", ""),
		SMTPFromName:  env("SMTP_FROM_NAME", "Magia Disney & Royal"),

		MinioEndpoint:  env("MINIO_ENDPOINT", ""),
		MinioAccessKey: env("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: env("MINIO_SECRET_KEY", ""),
		MinioBucket:    env("MINIO_BUCKET", "mdr-backups"),
		MinioUseSSL:    env("MINIO_USE_SSL", "true") == "true",
	}

	switch cfg.StoreDriver {
	case "memory":
	case "postgres":
		cfg.DatabaseURL = mustEnv("DATABASE_URL")
	case "redis":
		cfg.RedisURL = mustEnv("REDIS_URL")
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid env %s: %v", k, err)
	}
	return n
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}
