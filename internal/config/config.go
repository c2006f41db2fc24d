package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UseSSL           bool
	PresignExpirySec int
	UploadExpirySec  int
	ListenEvents     bool
}

// RedisConfig holds the users directory cache settings.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	UsersTTLSec int
}

// AuthConfig holds identity token and role settings.
type AuthConfig struct {
	JWTSecret   string
	AdminRole   string
	EventsToken string
}

// LifecycleConfig drives ingestion, sharing policy and expiration.
type LifecycleConfig struct {
	PrivateNamespace string
	SecureNamespace  string
	RetentionSec     int
	SweepSchedule    string
	DeniedRecipients []string
}

// Retention returns the document retention window.
func (l LifecycleConfig) Retention() time.Duration {
	return time.Duration(l.RetentionSec) * time.Second
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env       string
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Lifecycle LifecycleConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Env:     getEnv("APP_ENV", "dev"),
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:         getEnv("MINIO_ENDPOINT", ""),
			AccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:        getEnv("MINIO_SECRET_KEY", ""),
			Bucket:           getEnv("MINIO_BUCKET", ""),
			UseSSL:           getEnvBool("MINIO_USE_SSL", false),
			PresignExpirySec: getEnvInt("MINIO_PRESIGN_EXPIRY_SEC", 3600),
			UploadExpirySec:  getEnvInt("MINIO_UPLOAD_EXPIRY_SEC", 900),
			ListenEvents:     getEnvBool("MINIO_LISTEN_EVENTS", true),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			UsersTTLSec: getEnvInt("REDIS_USERS_TTL_SEC", 300),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			AdminRole:   getEnv("AUTH_ADMIN_ROLE", "admin"),
			EventsToken: getEnv("EVENTS_TOKEN", ""),
		},
		Lifecycle: LifecycleConfig{
			PrivateNamespace: getEnv("UPLOAD_PRIVATE_NAMESPACE", "private"),
			SecureNamespace:  getEnv("UPLOAD_SECURE_NAMESPACE", "secure_store"),
			RetentionSec:     getEnvInt("DOCUMENT_RETENTION_SEC", 3600),
			SweepSchedule:    getEnv("SWEEP_SCHEDULE", "@every 5m"),
			DeniedRecipients: getEnvList("SHARE_DENIED_RECIPIENTS", []string{"nosharable@gmail.com"}),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blank items.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
