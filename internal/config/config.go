package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/linkface/linkface/internal/models"
)

type Config struct {
	PORT         string
	LOG_LEVEL    string
	APP_URL      string
	DATA_DIR     string
	DATABASE_URL string

	STORAGE_TYPE string

	MAX_IMAGE_SIZE      int
	MAX_BASE64_SIZE     int
	MIN_IMAGE_DIMENSION int
	MAX_IMAGE_WIDTH     int
	MAX_IMAGE_HEIGHT    int
	IMAGE_QUALITY       int
	ALLOWED_IMAGE_TYPES []string

	RATE_LIMIT_WINDOW       time.Duration
	RATE_LIMIT_MAX_REQUESTS int

	ADMIN_PASSWORD      string
	ADMIN_PASSWORD_HASH string
	ADMIN_TOKEN         string
	SESSION_TTL         time.Duration

	AWS_REGION            string
	AWS_ACCESS_KEY_ID     string
	AWS_SECRET_ACCESS_KEY string
	AWS_S3_BUCKET_NAME    string

	BLOB_READ_WRITE_TOKEN string

	GOOGLE_APPLICATION_CREDENTIALS string
	GOOGLE_DRIVE_FOLDER_ID         string

	KAFKA_ADDRESS string
	KAFKA_TOPIC   string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string

	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USER     string
	SMTP_PASSWORD string
	SMTP_FROM     string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Notice: %s=%q is not a positive number, using default %d", key, v, def)
	}
	return def
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:         getEnv("PORT", "8080"),
		LOG_LEVEL:    getEnv("LOG_LEVEL", "info"),
		APP_URL:      getEnv("APP_URL", "http://localhost:8080"),
		DATA_DIR:     getEnv("DATA_DIR", "data"),
		DATABASE_URL: os.Getenv("DATABASE_URL"),

		STORAGE_TYPE: getEnv("STORAGE_TYPE", "local"),

		MAX_IMAGE_SIZE:      getEnvInt("MAX_IMAGE_SIZE", 5242880),
		MAX_BASE64_SIZE:     getEnvInt("MAX_BASE64_SIZE", 7000000),
		MIN_IMAGE_DIMENSION: getEnvInt("MIN_IMAGE_DIMENSION", 200),
		MAX_IMAGE_WIDTH:     getEnvInt("MAX_IMAGE_WIDTH", 1920),
		MAX_IMAGE_HEIGHT:    getEnvInt("MAX_IMAGE_HEIGHT", 1920),
		IMAGE_QUALITY:       getEnvInt("IMAGE_QUALITY", 85),

		RATE_LIMIT_WINDOW:       time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 60000)) * time.Millisecond,
		RATE_LIMIT_MAX_REQUESTS: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),

		ADMIN_PASSWORD:      getEnv("ADMIN_PASSWORD", "admin123"),
		ADMIN_PASSWORD_HASH: os.Getenv("ADMIN_PASSWORD_HASH"),
		ADMIN_TOKEN:         os.Getenv("ADMIN_TOKEN"),
		SESSION_TTL:         time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,

		AWS_REGION:            getEnv("AWS_REGION", "us-east-1"),
		AWS_ACCESS_KEY_ID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWS_SECRET_ACCESS_KEY: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWS_S3_BUCKET_NAME:    os.Getenv("AWS_S3_BUCKET_NAME"),

		BLOB_READ_WRITE_TOKEN: os.Getenv("BLOB_READ_WRITE_TOKEN"),

		GOOGLE_APPLICATION_CREDENTIALS: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GOOGLE_DRIVE_FOLDER_ID:         os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		KAFKA_TOPIC:   getEnv("KAFKA_TOPIC", "submission_events"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
		ES_INDEX:    getEnv("ES_INDEX", "submissions"),

		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     getEnvInt("SMTP_PORT", 587),
		SMTP_USER:     os.Getenv("SMTP_USER"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     os.Getenv("SMTP_FROM"),
	}

	types := getEnv("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/webp")
	for _, t := range strings.Split(types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			config.ALLOWED_IMAGE_TYPES = append(config.ALLOWED_IMAGE_TYPES, t)
		}
	}

	return config, nil
}

// Validate reports configuration problems without stopping startup; the
// service is operable with zero configuration in non-production mode.
func (c *Config) Validate() []string {
	var errs []string

	switch c.STORAGE_TYPE {
	case "local", "vercel-blob", "s3", "drive":
	default:
		errs = append(errs, fmt.Sprintf("invalid STORAGE_TYPE: %s, use: local, vercel-blob, s3, or drive", c.STORAGE_TYPE))
	}

	if c.STORAGE_TYPE == "s3" {
		if c.AWS_ACCESS_KEY_ID == "" {
			errs = append(errs, "AWS_ACCESS_KEY_ID is required for s3 storage")
		}
		if c.AWS_SECRET_ACCESS_KEY == "" {
			errs = append(errs, "AWS_SECRET_ACCESS_KEY is required for s3 storage")
		}
		if c.AWS_S3_BUCKET_NAME == "" {
			errs = append(errs, "AWS_S3_BUCKET_NAME is required for s3 storage")
		}
	}

	if c.STORAGE_TYPE == "vercel-blob" && c.BLOB_READ_WRITE_TOKEN == "" {
		errs = append(errs, "BLOB_READ_WRITE_TOKEN is required for vercel-blob storage")
	}

	if c.STORAGE_TYPE == "drive" {
		if c.GOOGLE_APPLICATION_CREDENTIALS == "" {
			errs = append(errs, "GOOGLE_APPLICATION_CREDENTIALS is required for drive storage")
		}
		if c.GOOGLE_DRIVE_FOLDER_ID == "" {
			errs = append(errs, "GOOGLE_DRIVE_FOLDER_ID is required for drive storage")
		}
	}

	if c.ADMIN_PASSWORD == "admin123" && c.ADMIN_PASSWORD_HASH == "" && os.Getenv("APP_ENV") == "production" {
		errs = append(errs, "ADMIN_PASSWORD must be changed in production")
	}

	return errs
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DATABASE_URL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DATABASE_URL), &gorm.Config{})
	} else {
		if mkErr := os.MkdirAll(cfg.DATA_DIR, 0o755); mkErr != nil {
			return nil, fmt.Errorf("could not create data directory: %w", mkErr)
		}
		db, err = gorm.Open(sqlite.Open(filepath.Join(cfg.DATA_DIR, "app.db")), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	if err := db.AutoMigrate(&models.Employee{}, &models.Submission{}); err != nil {
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}
	return db, nil
}
