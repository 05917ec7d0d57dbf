package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	JWTSecret          string
	CronSecret         string
	Port               string
	DatabasePath       string
	LogLevel           string
	MaxUploadSizeBytes int64

	// Review sessions created by an upload live this long before the
	// caller has to re-upload the file.
	ReviewSessionTTL time.Duration

	// Number of customers a single batch invocation processes. The cron
	// caller re-invokes until hasMore is false.
	ReportBatchSize int

	StorageProvider  string // "gcs" or "local"
	GCSBucket        string
	LocalStoragePath string
	PublicBaseURL    string

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	NotionAPIKey    string
	NotionLogsDBID  string
	OpsLogFirstNErr int
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	cronSecret := getEnv("CRON_SECRET", "")
	if cronSecret == "" {
		log.Println("WARNING: CRON_SECRET not set. The batch report endpoint will reject every request until it is configured.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	reviewSessionTTLStr := getEnv("REVIEW_SESSION_TTL", "30m")
	reviewSessionTTL, err := time.ParseDuration(reviewSessionTTLStr)
	if err != nil {
		log.Printf("WARNING: Invalid REVIEW_SESSION_TTL format '%s'. Using default 30m. Error: %v", reviewSessionTTLStr, err)
		reviewSessionTTL = 30 * time.Minute
	}

	Cfg = &AppConfig{
		JWTSecret:          jwtSecret,
		CronSecret:         cronSecret,
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./rentfolio.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: maxUploadSizeBytes,

		ReviewSessionTTL: reviewSessionTTL,
		ReportBatchSize:  getEnvAsInt("REPORT_BATCH_SIZE", 10),

		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./reports"),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080/reports"),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "reports@example.com"),
		SenderName:  getEnv("SENDER_NAME", "Rentfolio Reports"),

		NotionAPIKey:    getEnv("NOTION_API_KEY", ""),
		NotionLogsDBID:  getEnv("NOTION_LOGS_DATABASE_ID", ""),
		OpsLogFirstNErr: getEnvAsInt("OPS_LOG_FIRST_N_ERRORS", 5),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.SenderEmail == "reports@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly (e.g., your Mailgun sender) when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	if Cfg.StorageProvider == "gcs" && Cfg.GCSBucket == "" {
		log.Fatalf("FATAL: GCS_BUCKET is required when STORAGE_PROVIDER is 'gcs', but it's not set in environment or .env file.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, Storage=%s, EmailProvider=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.StorageProvider, Cfg.EmailServiceProvider)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}
