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
	JWTTTL       time.Duration
	ServerPort   int
	AppEnv       string
	LogLevel     string

	CORSAllowedOrigins []string

	ReminderInterval time.Duration
	ReminderLeadTime time.Duration
	AdminInviteTTL   time.Duration

	Redis RedisConfig
	Kafka KafkaConfig
	SMTP  SMTPConfig
	R2    R2Config
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled: без адреса Redis используются in-memory реализации.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "team-hub.events"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getEnv("SMTP_FROM", "no-reply@team-hub.local"),
		},
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReminderInterval, err = getDuration("REMINDER_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReminderLeadTime, err = getDuration("REMINDER_LEAD_TIME", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AdminInviteTTL, err = getDuration("INVITE_TTL_ADMIN", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return value, nil
}

// getList разбирает значения через запятую, пустые элементы отбрасываются.
func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
