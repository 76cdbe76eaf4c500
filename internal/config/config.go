package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins

	StoreBackend       string // "memory" | "redis"
	StoreSweepInterval time.Duration
	RedisURL           string
	RedisPassword      string
	RedisDB            int

	OTPTTL          time.Duration
	OTPMaxAttempts  int
	RateLimitWindow time.Duration
	RateLimitMax    int
	GatewayTimeout  time.Duration

	IPRateLimitRPS   float64
	IPRateLimitBurst int

	SMSAccessKeyID string
	SMSSecretKey   string
	SMSSenderID    string
	SNSRegion      string

	AWSRegion       string
	AWSEndpointURL  string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID  string
	AWSSecretKey    string
	DynamoUsers     string
	UserSyncEnabled bool

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
}

// IsDevelopment reports whether development-only endpoints may be exposed.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "production"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		StoreBackend:       getEnv("STORE_BACKEND", "memory"),
		StoreSweepInterval: getEnvDuration("STORE_SWEEP_INTERVAL", 5*time.Minute),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),

		OTPTTL:          getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts:  getEnvInt("OTP_MAX_ATTEMPTS", 3),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 3),
		GatewayTimeout:  getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),

		IPRateLimitRPS:   getEnvFloat("IP_RATE_LIMIT_RPS", 5),
		IPRateLimitBurst: getEnvInt("IP_RATE_LIMIT_BURST", 10),

		SMSAccessKeyID: getEnv("SMS_ACCESS_KEY_ID", ""),
		SMSSecretKey:   getEnv("SMS_SECRET_ACCESS_KEY", ""),
		SMSSenderID:    getEnv("SMS_SENDER_ID", "ShopShap"),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),

		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:  getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoUsers:     getEnv("DYNAMO_TABLE_USERS", "users"),
		UserSyncEnabled: getEnvBool("USER_SYNC_ENABLED", true),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 30*time.Minute),
	}
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
