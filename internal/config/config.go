package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	App struct {
		ENV string
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		Debug    bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Events struct {
		Backend string
		Channel string
		// Buffer is how far a live subscriber may lag before it is dropped.
		Buffer int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host           string
		Port           string
		CORSOrigins    []string
		RateLimitRPS   int
		RateLimitBurst int
	}

	Payment struct {
		ShopID    string
		SecretKey string
		APIURL    string
		Currency  string
		ReturnURL string
		Timeout   time.Duration
	}

	Storage struct {
		Bucket          string
		Region          string
		Endpoint        string
		AccessKeyID     string
		SecretAccessKey string
		PresignTTL      time.Duration
	}
}

func New() *Config {
	LoadDotEnv()

	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matchbox")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.Debug = isTruthy(os.Getenv("DB_DEBUG"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "matchbox")

		switch cfg.DB.Driver {
		case "postgres":
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		case "sqlite":
			cfg.DB.DSN = getEnvDefault("DB_PATH", "matchbox.sqlite")
		default:
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// Event bus: "local" keeps fan-out in-process, "redis" relays across instances.
	cfg.Events.Backend = strings.ToLower(getEnvDefault("EVENTS_BACKEND", "local"))
	cfg.Events.Channel = getEnvDefault("EVENTS_CHANNEL", "matchbox:messages")
	cfg.Events.Buffer = getEnvInt("EVENTS_BUFFER", 64)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("PORT", "3001")
	cfg.HTTP.CORSOrigins = splitList(getEnvDefault("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"))
	cfg.HTTP.RateLimitRPS = getEnvInt("RATE_LIMIT_RPS", 10)
	cfg.HTTP.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 20)

	// Payment gateway
	cfg.Payment.ShopID = getEnvDefault("YOOMONEY_SHOP_ID", "test_shop_id")
	cfg.Payment.SecretKey = getEnvDefault("YOOMONEY_SECRET_KEY", "test_secret_key")
	cfg.Payment.APIURL = strings.TrimRight(getEnvDefault("YOOMONEY_API_URL", "https://api.yookassa.ru/v3"), "/")
	cfg.Payment.Currency = getEnvDefault("YOOMONEY_CURRENCY", "RUB")
	cfg.Payment.ReturnURL = getEnvDefault("YOOMONEY_RETURN_URL", "https://your-app.com/payment/success")
	cfg.Payment.Timeout = getEnvDuration("YOOMONEY_TIMEOUT", 15*time.Second)

	// Profile image storage (S3 compatible). Empty bucket disables uploads.
	cfg.Storage.Bucket = getEnvDefault("S3_BUCKET_NAME", "")
	cfg.Storage.Region = getEnvDefault("S3_REGION", "us-east-1")
	cfg.Storage.Endpoint = getEnvDefault("S3_ENDPOINT", "")
	cfg.Storage.AccessKeyID = getEnvDefault("S3_ACCESS_KEY_ID", "")
	cfg.Storage.SecretAccessKey = getEnvDefault("S3_SECRET_ACCESS_KEY", "")
	cfg.Storage.PresignTTL = getEnvDuration("S3_PRESIGN_TTL", 5*time.Minute)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
