package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort string
	ClientURL  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	JWTSecret string

	// CookieMaxAge is the session cookie lifetime in seconds.
	CookieMaxAge int

	GeminiAPIKey string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	// TrashSweepInterval is how often the trash sweeper runs, in minutes.
	TrashSweepInterval int
	// TrashRetentionDays is how long trashed dreams are kept before permanent removal.
	TrashRetentionDays int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:5173"
	}

	cookieMaxAge, err := strconv.Atoi(os.Getenv("COOKIE_MAX_AGE"))
	if err != nil || cookieMaxAge <= 0 {
		cookieMaxAge = 7 * 24 * 60 * 60
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || smtpPort <= 0 {
		smtpPort = 587
	}

	sweepInterval, err := strconv.Atoi(os.Getenv("TRASH_SWEEP_INTERVAL_MINUTES"))
	if err != nil || sweepInterval <= 0 {
		sweepInterval = 60
	}

	retentionDays, err := strconv.Atoi(os.Getenv("TRASH_RETENTION_DAYS"))
	if err != nil || retentionDays <= 0 {
		retentionDays = 30
	}

	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "require"
	}

	return &Config{
		Env:        env,
		ServerPort: serverPort,
		ClientURL:  clientURL,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  dbSSLMode,

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		CookieMaxAge: cookieMaxAge,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  smtpPort,
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		TrashSweepInterval: sweepInterval,
		TrashRetentionDays: retentionDays,
	}, nil
}

// IsDevelopment reports whether the app runs in development mode.
// Error responses carry extra detail only in development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
