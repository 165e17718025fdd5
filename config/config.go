package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	CORSAllowedOrigins []string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ReportCacheTTL time.Duration

	RabbitMQURL  string
	AuditLogPath string

	S3 S3Config
}

// S3Config описывает S3-совместимое хранилище для фотографий.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled сообщает, задано ли хранилище целиком.
func (c S3Config) Enabled() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != "" && c.PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getenv("SERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil || redisDB < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB environment variable: %q", v)
		}
	}

	ttl, err := time.ParseDuration(getenv("REPORT_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL environment variable: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("REPORT_CACHE_TTL must be positive, got %s", ttl)
	}

	s3cfg := S3Config{
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		Region:          getenv("S3_REGION", "auto"),
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("S3_BUCKET"),
		PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
	}
	if !s3cfg.Enabled() && (s3cfg.AccessKeyID != "" || s3cfg.SecretAccessKey != "" || s3cfg.BucketName != "" || s3cfg.PublicBaseURL != "") {
		return nil, fmt.Errorf("S3 storage is partially configured: S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_BUCKET and S3_PUBLIC_BASE_URL are all required")
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		ReportCacheTTL:     ttl,
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		AuditLogPath:       getenv("AUDIT_LOG_PATH", "logs/audit.log"),
		S3:                 s3cfg,
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
