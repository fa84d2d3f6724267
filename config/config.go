package config

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080" validate:"required,numeric"`
	AppMode string `envconfig:"APP_MODE" default:"debug" validate:"oneof=debug release test"`
	LogMode string `envconfig:"LOG_MODE" default:"development" validate:"oneof=development production"`

	DBHost        string `envconfig:"DB_HOST" default:"localhost" validate:"required"`
	DBUser        string `envconfig:"DB_USER" default:"postgres" validate:"required"`
	DBPassword    string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName        string `envconfig:"DB_NAME" default:"parley_chat" validate:"required"`
	DBPort        string `envconfig:"DB_PORT" default:"5432" validate:"required,numeric"`
	DBMaxOpen     int    `envconfig:"DB_MAX_OPEN_CONNS" default:"50" validate:"min=1"`
	DBMaxIdle     int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10" validate:"min=0"`
	DBEmbedded    bool   `envconfig:"DB_EMBEDDED" default:"false"`
	DBEmbeddedDir string `envconfig:"DB_EMBEDDED_DIR" default:".pgdata"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost" validate:"required"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379" validate:"required,numeric"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"min=0"`

	JWTSecret    string `envconfig:"JWT_SECRET" default:"change-me" validate:"required"`
	JWTExpiryMin int    `envconfig:"JWT_EXPIRY_MIN" default:"1440" validate:"min=1"`

	MessagePageSize    int `envconfig:"MESSAGE_PAGE_SIZE" default:"15" validate:"min=1"`
	MessagePageSizeMax int `envconfig:"MESSAGE_PAGE_SIZE_MAX" default:"100" validate:"min=1,gtefield=MessagePageSize"`
	MessagesPerMinute  int `envconfig:"MESSAGES_PER_MINUTE" default:"60" validate:"min=1"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// DatabaseURL builds a postgres:// URL usable by both pgx and golang-migrate.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&TimeZone=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
