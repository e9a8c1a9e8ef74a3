package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Salespoint"`
		Port int    `envconfig:"PORT" default:"3000"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"pos_database.db"`
		// BusyTimeout bounds how long a unit of work waits for the writer
		// before failing with a retryable error.
		BusyTimeout time.Duration `envconfig:"DB_BUSY_TIMEOUT" default:"5s"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET" default:"pos_system_secret_key"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	Uploads struct {
		Dir      string `envconfig:"UPLOADS_DIR" default:"public/uploads"`
		MaxBytes int64  `envconfig:"UPLOADS_MAX_BYTES" default:"5242880"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

// DSN builds the SQLite connection string. Foreign keys are enforced per
// connection; the busy timeout bounds how long a write waits for the lock.
func (c *Config) DSN() string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		c.DB.Path, c.DB.BusyTimeout.Milliseconds())
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
