package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	S3BucketName    string
	S3PublicBaseURL string // when set, image URLs are <base>/<key>; otherwise s3://bucket/key

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration

	// InstitutionDomain is the email suffix every account must carry, including the "@".
	InstitutionDomain string
	OTPTTL            time.Duration

	MailProvider   string // "smtp" | "sendgrid"
	MailFrom       string
	MailFromName   string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string

	SNSRegion  string
	SMSEnabled bool

	RedisURL string // when set, refresh-token revocations live in Redis instead of DynamoDB

	GoogleClientID string

	AllowedOrigins []string // CORS allowed origins
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	OTPs          string
	Products      string
	ProductImages string
	RevokedTokens string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPs:          getEnv("DYNAMO_TABLE_OTPS", "otp_verifications"),
			Products:      getEnv("DYNAMO_TABLE_PRODUCTS", "products"),
			ProductImages: getEnv("DYNAMO_TABLE_PRODUCT_IMAGES", "product_images"),
			RevokedTokens: getEnv("DYNAMO_TABLE_REVOKED_TOKENS", "revoked_tokens"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", "nitrmart-media"),
		S3PublicBaseURL:   strings.TrimSuffix(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		AccessTokenTTL:    time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		RefreshTokenTTL:   time.Duration(getEnvInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		InstitutionDomain: normalizeDomain(getEnv("INSTITUTION_EMAIL_DOMAIN", "nitrkl.ac.in")),
		OTPTTL:            time.Duration(getEnvInt("OTP_TTL_MINUTES", 30)) * time.Minute,
		MailProvider:      strings.ToLower(getEnv("MAIL_PROVIDER", "smtp")),
		MailFrom:          getEnv("MAIL_FROM", "noreply@nitrmart.in"),
		MailFromName:      getEnv("MAIL_FROM_NAME", "NITR Mart"),
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnv("SMTP_PORT", "1025"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SNSRegion:         getEnv("SNS_REGION", "ap-south-1"),
		SMSEnabled:        getEnvBool("SMS_ENABLED", false),
		RedisURL:          getEnv("REDIS_URL", ""),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),
	}
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// normalizeDomain turns "nitrkl.ac.in" or "@NITRKL.ac.in" into "@nitrkl.ac.in".
func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if !strings.HasPrefix(d, "@") {
		d = "@" + d
	}
	return d
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

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
