package config

import (
	"os"
	"strconv"
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

// StorageConfig holds local filesystem storage settings.
type StorageConfig struct {
	// Dir is the root of the document storage tree. Files live under Dir/local/.
	Dir string
	// TmpDir receives uploaded files before validation.
	TmpDir string
	// MaxUploadBytes is the per-file size limit enforced by validation.
	MaxUploadBytes int64
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	JWTSecret   string
	TokenTTLMin int
}

// RetentionConfig holds document retention policy settings.
type RetentionConfig struct {
	// DefaultExpiryDays is applied when an upload does not specify expiry_days.
	DefaultExpiryDays int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Retention RetentionConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
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
		Storage: StorageConfig{
			Dir:            getEnv("STORAGE_DIR", "documents"),
			TmpDir:         getEnv("UPLOAD_TMP_DIR", os.TempDir()),
			MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenTTLMin: getEnvInt("JWT_TTL_MIN", 60),
		},
		Retention: RetentionConfig{
			DefaultExpiryDays: getEnvInt("RETENTION_DEFAULT_EXPIRY_DAYS", 365),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
