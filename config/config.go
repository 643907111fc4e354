package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreMySQL    = "mysql"
	StoreMemory   = "memory"

	AuthCognito = "cognito"
	AuthJWT     = "jwt"

	BackendAWS  = "aws"
	BackendStub = "stub"

	// MaxUploadCeiling bounds MAX_UPLOAD_BYTES so the raw body limit derived from it stays in range.
	MaxUploadCeiling = 1 << 30
)

// Config holds all configuration for the price tracker service
type Config struct {
	// Server configuration
	Port           string
	TrustedProxies []string

	// Logging
	LogLevel  string
	LogFormat string

	// AWS configuration
	AWSRegion string

	// Storage configuration
	StoreBackend      string
	ProductsTableName string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string

	// Authentication
	AuthMode        string
	CognitoClientID string
	JWTSecret       string

	// Receipt pipeline
	OCRBackend        string
	LLMBackend        string
	BedrockModelID    string
	BedrockMaxTokens  int
	StoreReceipts     bool
	ReceiptsBucket    string
	MaxUploadBytes    int64
	AllowedImageTypes []string

	// HTTP policy
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		TrustedProxies: getStringSliceEnv("TRUSTED_PROXIES", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", StoreDynamoDB)),
		ProductsTableName: getEnv("PRODUCTS_TABLE_NAME", "Products"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "server"),
		DBPassword:        getEnv("DB_PASSWORD", "secret_app"),
		DBName:            getEnv("DB_NAME", "price_tracker"),

		AuthMode:        strings.ToLower(getEnv("AUTH_MODE", AuthCognito)),
		CognitoClientID: getEnv("COGNITO_CLIENT_ID", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),

		OCRBackend:        getBackendEnv("OCR_BACKEND", "textract"),
		LLMBackend:        getBackendEnv("LLM_BACKEND", "bedrock"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),
		BedrockMaxTokens:  getIntEnv("BEDROCK_MAX_TOKENS", 2048),
		StoreReceipts:     getBoolEnv("STORE_RECEIPTS", false),
		ReceiptsBucket:    getEnv("RECEIPTS_BUCKET", ""),
		MaxUploadBytes:    getInt64Env("MAX_UPLOAD_BYTES", 5*1024*1024),
		AllowedImageTypes: getStringSliceEnv("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/webp"),

		AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", ""),
		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 5),
	}
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreDynamoDB:
		if c.ProductsTableName == "" {
			return errors.New("PRODUCTS_TABLE_NAME is required for the dynamodb store")
		}
	case StoreMySQL, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AuthMode {
	case AuthCognito:
		if c.CognitoClientID == "" {
			return errors.New("COGNITO_CLIENT_ID is required when AUTH_MODE=cognito")
		}
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	for _, backend := range []struct{ key, value string }{
		{"OCR_BACKEND", c.OCRBackend},
		{"LLM_BACKEND", c.LLMBackend},
	} {
		if backend.value != BackendAWS && backend.value != BackendStub {
			return fmt.Errorf("unknown %s %q", backend.key, backend.value)
		}
	}

	if c.StoreReceipts && c.ReceiptsBucket == "" {
		return errors.New("RECEIPTS_BUCKET is required when STORE_RECEIPTS=true")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be greater than 0")
	}
	if c.MaxUploadBytes > MaxUploadCeiling {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not exceed %d", MaxUploadCeiling)
	}
	return nil
}

// MySQLDSN builds the data source name for the mysql store
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// getBackendEnv normalizes a backend variable. "stub" selects the stub;
// "aws" and the AWS service name select BackendAWS. Anything else is
// returned as given for Validate to reject.
func getBackendEnv(key, defaultValue string) string {
	value := strings.ToLower(getEnv(key, defaultValue))
	switch value {
	case BackendStub:
		return BackendStub
	case BackendAWS, strings.ToLower(defaultValue):
		return BackendAWS
	}
	return value
}

// getStringSliceEnv gets a comma-separated environment variable as a slice, dropping empty items
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
