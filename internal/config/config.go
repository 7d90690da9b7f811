package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        int
	AppEnv      string
	DatabaseURL string

	JWTSecret          string
	JWTSecretGenerated bool

	ReceiptPrefix string

	Redis    RedisConfig
	Minio    MinioConfig
	Twilio   TwilioConfig
	Reminder ReminderConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	ReceiptBucket string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// Configured reports whether live SMS credentials were supplied.
func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.AccountSID != "your_twilio_account_sid"
}

type ReminderConfig struct {
	Hour      int
	Location  *time.Location
	AfterDays int
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	envFileLoaded := godotenv.Load() == nil

	cfg := &Config{
		Port:          getEnvIntWithDefault("PORT", 5000),
		AppEnv:        getEnvWithDefault("APP_ENV", "development"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ReceiptPrefix: getEnvWithDefault("RECEIPT_PREFIX", "RCP"),
		Redis: RedisConfig{
			Addr:     strings.TrimPrefix(strings.TrimPrefix(os.Getenv("REDIS_ADDR"), "redis://"), "rediss://"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvIntWithDefault("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:      getEnvWithDefault("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnvWithDefault("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnvWithDefault("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:        os.Getenv("MINIO_USE_SSL") == "true",
			ReceiptBucket: getEnvWithDefault("MINIO_RECEIPT_BUCKET", "receipts"),
		},
		Twilio: TwilioConfig{
			AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			PhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		},
		Reminder: ReminderConfig{
			Hour:      getEnvIntWithDefault("REMINDER_HOUR", 9),
			AfterDays: getEnvIntWithDefault("REMINDER_AFTER_DAYS", 15),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, envFileLoaded, errors.New("DATABASE_URL environment variable is required")
	}

	if cfg.Reminder.Hour < 0 || cfg.Reminder.Hour > 23 {
		return nil, envFileLoaded, errors.New("REMINDER_HOUR must be between 0 and 23")
	}

	loc, err := time.LoadLocation(getEnvWithDefault("REMINDER_TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, envFileLoaded, err
	}
	cfg.Reminder.Location = loc

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		cfg.JWTSecretGenerated = true
	}

	return cfg, envFileLoaded, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
