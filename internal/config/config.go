package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	// JWTSecret selects HS256 signing. When empty the RSA key pair is used.
	JWTSecret         string
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion  string
	SMSEnabled bool

	RedisAddr     string // empty selects the in-process realtime hub
	RedisPassword string

	// TrustProxy makes the client address come from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that sets those headers.
	TrustProxy bool

	AllowedOrigins []string // CORS allowed origins
	FrontendURL    string
	BaseURL        string

	// AllowAdminSignup lets the register endpoint create admin accounts.
	AllowAdminSignup bool

	RazorpayKeyID     string
	RazorpayKeySecret string

	PhonePeMerchantID string
	PhonePeSaltKey    string
	PhonePeSaltIndex  string
	PhonePeEnv        string

	GoogleClientID string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users              string
	Otps               string
	Sessions           string
	Referrals          string
	ReferralEntries    string
	Wallets            string
	WalletTransactions string
	TopUps             string
	Products           string
	Orders             string
	Settings           string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "5000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:              getEnv("DYNAMO_TABLE_USERS", "users"),
			Otps:               getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Sessions:           getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Referrals:          getEnv("DYNAMO_TABLE_REFERRALS", "referrals"),
			ReferralEntries:    getEnv("DYNAMO_TABLE_REFERRAL_ENTRIES", "referral_entries"),
			Wallets:            getEnv("DYNAMO_TABLE_WALLETS", "wallets"),
			WalletTransactions: getEnv("DYNAMO_TABLE_WALLET_TRANSACTIONS", "wallet_transactions"),
			TopUps:             getEnv("DYNAMO_TABLE_TOPUPS", "topups"),
			Products:           getEnv("DYNAMO_TABLE_PRODUCTS", "products"),
			Orders:             getEnv("DYNAMO_TABLE_ORDERS", "orders"),
			Settings:           getEnv("DYNAMO_TABLE_SETTINGS", "settings"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "referral-shop-products"),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:  getEnv("SNS_REGION", "ap-south-1"),
		SMSEnabled: getEnvBool("SMS_ENABLED", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TrustProxy: getEnvBool("TRUST_PROXY", false),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:5000"),

		AllowAdminSignup: getEnvBool("ALLOW_ADMIN_SIGNUP", false),

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),

		PhonePeMerchantID: getEnv("PHONEPE_MERCHANT_ID", ""),
		PhonePeSaltKey:    getEnv("PHONEPE_SALT_KEY", ""),
		PhonePeSaltIndex:  getEnv("PHONEPE_SALT_INDEX", "1"),
		PhonePeEnv:        getEnv("PHONEPE_ENV", "sandbox"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
