package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	AppId       string

	MongoURI string
	DBName   string

	RedisAddr     string
	RedisPassword string

	JWTSecret  string
	SkipAuth   bool
	CronSecret string

	// BaseURL is the externally reachable URL embedded in tracking
	// pixels and rewritten links.
	BaseURL string

	// Timezone is the IANA zone identifier used to interpret schedule
	// times submitted by the UI. Storage is always UTC.
	Timezone string

	MailProvider string // "smtp" or "resend"
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	MailFrom     string
	ResendAPIKey string

	// DispatchCron is the in-process schedule for the due-email sweep.
	DispatchCron        string
	DispatchConcurrency int
	SendTimeoutSeconds  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "inteldesk"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "inteldesk"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		SkipAuth:   getEnv("SKIP_AUTH", "false") == "true",
		CronSecret: getEnv("CRON_SECRET", ""),

		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		Timezone: getEnv("TIMEZONE", "Asia/Kolkata"),

		MailProvider: getEnv("MAIL_PROVIDER", "smtp"),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		MailFrom:     getEnv("MAIL_FROM", "advisories@inteldesk.local"),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),

		DispatchCron:        getEnv("DISPATCH_CRON", "* * * * *"),
		DispatchConcurrency: getEnvInt("DISPATCH_CONCURRENCY", 4),
		SendTimeoutSeconds:  getEnvInt("SEND_TIMEOUT_SECONDS", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
