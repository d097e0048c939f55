package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Code store backends selectable through CODE_STORE.
const (
	CodeStoreMemory = "memory"
	CodeStoreRedis  = "redis"
	CodeStoreDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort           string
	AppEnv            string
	AWSRegion         string
	AWSEndpointURL    string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID    string
	AWSSecretKey      string
	DynamoTables      DynamoTables
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	SNSRegion         string
	SMSSenderID       string
	SMSWorkers        int
	SMSQueueSize      int
	SMSRatePerSecond  float64
	CodeStore         string
	VerificationTTL   time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AdminPhoneNumbers []string
	AllowedOrigins    []string // CORS allowed origins
	PrivacyPolicyPath string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                string
	PhoneNumbers         string
	PendingVerifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                getEnv("DYNAMO_TABLE_USERS", "users"),
			PhoneNumbers:         getEnv("DYNAMO_TABLE_PHONE_NUMBERS", "phone_numbers"),
			PendingVerifications: getEnv("DYNAMO_TABLE_PENDING_VERIFICATIONS", "pending_verifications"),
		},
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		SMSSenderID:       getEnv("SMS_SENDER_ID", ""),
		SMSWorkers:        getEnvInt("SMS_WORKERS", 4),
		SMSQueueSize:      getEnvInt("SMS_QUEUE_SIZE", 256),
		SMSRatePerSecond:  getEnvFloat("SMS_RATE_PER_SECOND", 20),
		CodeStore:         strings.ToLower(getEnv("CODE_STORE", CodeStoreMemory)),
		VerificationTTL:   getEnvDuration("VERIFICATION_CODE_TTL", 600*time.Second),
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AdminPhoneNumbers: getEnvList("ADMIN_PHONE_NUMBERS", nil),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		PrivacyPolicyPath: getEnv("PRIVACY_POLICY_PATH", "./public/pp_app.html"),
	}
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration syntax ("10m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
