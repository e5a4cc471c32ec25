// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_DSN" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	WebhookSecret           string `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	GRPCServer              `yaml:"grpc_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	S3                      `yaml:"s3"`
	Entitlements            `yaml:"entitlements"`
	Scheduler               `yaml:"scheduler"`
	RateLimit               `yaml:"rate_limit"`
	Bootstrap               `yaml:"bootstrap"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env-default:"20971520"`
}

// GRPCServer структура для настройки gRPC-сервиса проверки доступа
type GRPCServer struct {
	AddressGRPC string `yaml:"addressgrpc" env:"GRPC_ADDRESS" env-default:":50051"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
	TiersTTL     time.Duration `yaml:"tiers_ttl" env-default:"10m"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// S3 структура для подключения к объектному хранилищу (AWS S3 или MinIO)
type S3 struct {
	Region          string        `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Endpoint        string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string        `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	Bucket          string        `yaml:"bucket" env:"S3_BUCKET" env-default:"marketplace"`
	DisableSSL      bool          `yaml:"disable_ssl" env:"S3_DISABLE_SSL"`
	PresignTTL      time.Duration `yaml:"presign_ttl" env-default:"15m"`
}

// Entitlements структура с параметрами выдачи доступа
type Entitlements struct {
	PurchaseWindow time.Duration `yaml:"purchase_window" env-default:"720h"`
}

// Scheduler структура с расписаниями фоновых задач
type Scheduler struct {
	OutboxSchedule       string        `yaml:"outbox_schedule" env-default:"@every 10s"`
	OutboxBatchSize      int           `yaml:"outbox_batch_size" env-default:"100"`
	ExpirySchedule       string        `yaml:"expiry_schedule" env-default:"@hourly"`
	SubscriptionGrace    time.Duration `yaml:"subscription_grace" env-default:"72h"`
	OutboxMaxAttempts    int           `yaml:"outbox_max_attempts" env-default:"10"`
	OutboxRetryBaseDelay time.Duration `yaml:"outbox_retry_base_delay" env-default:"30s"`
}

// RateLimit структура с параметрами ограничения частоты загрузок
type RateLimit struct {
	UploadsPerMinute float64 `yaml:"uploads_per_minute" env-default:"6"`
	Burst            int     `yaml:"burst" env-default:"3"`
}

// Bootstrap структура с данными учётной записи владельца, создаваемой при первом запуске
type Bootstrap struct {
	OwnerEmail    string `yaml:"owner_email" env:"OWNER_EMAIL"`
	OwnerUsername string `yaml:"owner_username" env:"OWNER_USERNAME"`
	OwnerPassword string `yaml:"owner_password" env:"OWNER_PASSWORD"`
}

// Load читает конфиг по указанному пути с учётом переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if configPath == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига. Перед чтением подгружает .env, если он есть.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot load .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer: %s (timeout %s)\n"+
			"GRPCServer: %s\n"+
			"Redis: %s db=%d\n"+
			"S3: bucket=%s endpoint=%s\n"+
			"PurchaseWindow: %s\n"+
			"Scheduler: outbox=%q expiry=%q\n",
		c.Env,
		c.AddressHTTP, c.TimeoutHTTP,
		c.AddressGRPC,
		c.AddressRedis, c.DB,
		c.Bucket, c.Endpoint,
		c.PurchaseWindow,
		c.OutboxSchedule, c.ExpirySchedule,
	)
}
