package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/dossier/internal/database"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Dossier"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"dossier"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Store struct {
		// Driver is "memory" or "postgres".
		Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
	}

	Storage struct {
		// Driver is "local" or "gcs".
		Driver          string        `envconfig:"STORAGE_DRIVER" default:"local"`
		Dir             string        `envconfig:"STORAGE_DIR" default:"./data/files"`
		Bucket          string        `envconfig:"GCS_BUCKET"`
		ProjectID       string        `envconfig:"GCS_PROJECT_ID"`
		CredentialsFile string        `envconfig:"GCS_CREDENTIALS_FILE"`
		SignedURLExpiry time.Duration `envconfig:"GCS_SIGNED_URL_EXPIRY" default:"15m"`
	}

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET" default:"change-me"`
		Issuer   string        `envconfig:"JWT_ISSUER" default:"dossier"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"12h"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	Documents struct {
		ExpiryWindowDays int   `envconfig:"EXPIRY_WINDOW_DAYS" default:"30"`
		MaxUploadBytes   int64 `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DBPool() database.Pool {
	return database.Pool{
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Storage.Driver {
	case "local":
	case "gcs":
		if c.Storage.Bucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Documents.ExpiryWindowDays < 0 {
		return errors.New("EXPIRY_WINDOW_DAYS must not be negative")
	}

	return nil
}
