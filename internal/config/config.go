package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	Port             string
	WSPort           string
	TelegramBotToken string
	JWTSecret        string
	SessionTTL       time.Duration
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	RedisConfig      RedisConfig
	StorageDriver    string // cloudinary, s3
	CloudinaryConfig CloudinaryConfig
	S3Config         S3Config
	ChatReplyDelay   time.Duration
	SPADir           string
	AppEnv           string
	LogLevel         string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig содержит параметры хранилища истории чатов
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// S3Config содержит конфигурацию S3-совместимого бакета документов
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "skillswap_user"),
		Password: getEnv("PGPASSWORD", "skillswap_pass"),
		Name:     getEnv("PGDATABASE", "skillswap"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		WSPort:           getEnv("WS_PORT", "8081"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		SessionTTL:       getDuration("SESSION_TTL", 72*time.Hour),
		DatabaseURL:      dbConfig.URL(),
		DatabaseConfig:   dbConfig,
		RedisConfig: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		StorageDriver: getEnv("STORAGE_DRIVER", "cloudinary"),
		CloudinaryConfig: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "skillswap"),
		},
		S3Config: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "identity-documents"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		ChatReplyDelay: getDuration("CHAT_REPLY_DELAY", 1500*time.Millisecond),
		SPADir:         getEnv("SPA_DIR", "./web/dist"),
		AppEnv:         getEnv("APP_ENV", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("не задана переменная окружения JWT_SECRET")
	}
	switch c.StorageDriver {
	case "cloudinary", "s3":
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER: %q", c.StorageDriver)
	}
	return nil
}

// IsDevelopment сообщает, запущено ли приложение в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// URL формирует строку подключения к базе данных
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ некорректное значение %s=%q, используем %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️ некорректное значение %s=%q, используем %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
