package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER" envDefault:"postgres"`
	URL          string `env:"DATABASE_URL"`
	LogLevel     string `env:"DB_LOG_LEVEL" envDefault:"warn"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"console"`
	Output     string `env:"LOG_OUTPUT" envDefault:"console"`
	Filename   string `env:"LOG_FILE" envDefault:"logs/app.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins       []string      `env:"HTTP_CORS_ORIGINS" envSeparator:","`
	RateLimit         string        `env:"HTTP_RATE_LIMIT"`
}

type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load reads optional .env files and then the process environment.
func Load() (Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL required")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Port == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	return nil
}

// DSN falls back to a local file for sqlite when DATABASE_URL is unset.
func (c DatabaseConfig) DSN() string {
	if c.URL == "" && c.Driver == DriverSQLite {
		return "org.db?_pragma=foreign_keys(1)"
	}
	return c.URL
}

func loadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
