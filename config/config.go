package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	HTTP         ServerConfig
	GRPC         ServerConfig
	MySQL        MySQLConfig
	Log          LogConfig
	Auth         AuthConfig
	Payment      PaymentConfig
	Checkout     CheckoutConfig
	Verification VerificationConfig
	Jobs         JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	JWTSecret string
}

type PaymentConfig struct {
	BaseURL         string
	KeyID           string
	KeySecret       string
	DefaultCurrency string
	RequestTimeout  time.Duration
}

type CheckoutConfig struct {
	PendingSessionTimeout time.Duration
}

type VerificationConfig struct {
	MaxUploadBytes   int64
	StorageDir       string
	AutoApproveTypes []string
}

type JobsConfig struct {
	CheckoutCleanupInterval time.Duration
	CouponExpiryInterval    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}
	jwtSecret := os.Getenv("AUTH_JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "account-settings-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log:  LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Auth: AuthConfig{JWTSecret: jwtSecret},
		Payment: PaymentConfig{
			BaseURL:         getEnv("PAYMENT_GATEWAY_BASE_URL", ""),
			KeyID:           getEnv("PAYMENT_GATEWAY_KEY_ID", ""),
			KeySecret:       getEnv("PAYMENT_GATEWAY_KEY_SECRET", ""),
			DefaultCurrency: getEnv("PAYMENT_DEFAULT_CURRENCY", "INR"),
			RequestTimeout:  getDurationSecondsEnv("PAYMENT_REQUEST_TIMEOUT_SECONDS", 30*time.Second),
		},
		Checkout: CheckoutConfig{
			PendingSessionTimeout: getDurationEnv("CHECKOUT_PENDING_TIMEOUT_MINUTES", 30*time.Minute),
		},
		Verification: VerificationConfig{
			MaxUploadBytes:   getInt64Env("VERIFICATION_MAX_UPLOAD_BYTES", 5*1024*1024),
			StorageDir:       getEnv("VERIFICATION_STORAGE_DIR", "/var/lib/account-settings/documents"),
			AutoApproveTypes: getListEnv("VERIFICATION_AUTO_APPROVE_TYPES", nil),
		},
		Jobs: JobsConfig{
			CheckoutCleanupInterval: getDurationEnv("CHECKOUT_CLEANUP_INTERVAL_MINUTES", 10*time.Minute),
			CouponExpiryInterval:    getDurationEnv("COUPON_EXPIRY_INTERVAL_MINUTES", time.Hour),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getDurationSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
