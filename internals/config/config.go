package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

type Config struct {
	Env string `yaml:"env" env:"APP_ENV" env-default:"local"`

	Server struct {
		Host              string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
		Port              int           `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server"`

	Database struct {
		Driver             string        `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
		DSN                string        `yaml:"dsn" env:"DATABASE_URL" env-default:"app.db"`
		MaxOpenConns       int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
		MaxIdleConns       int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
		ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
		AutoMigrate        bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
		SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" env:"DB_SLOW_QUERY_THRESHOLD" env-default:"200ms"`
	} `yaml:"database"`

	// Retry governs how startup waits for the database.
	// MaxAttempts of 0 retries forever.
	Retry struct {
		Interval    time.Duration `yaml:"interval" env:"DB_RETRY_INTERVAL" env-default:"2s"`
		Multiplier  float64       `yaml:"multiplier" env:"DB_RETRY_MULTIPLIER" env-default:"1"`
		MaxInterval time.Duration `yaml:"max_interval" env:"DB_RETRY_MAX_INTERVAL" env-default:"30s"`
		MaxAttempts int           `yaml:"max_attempts" env:"DB_RETRY_MAX_ATTEMPTS" env-default:"0"`
	} `yaml:"retry"`

	CORS struct {
		AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
		AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	} `yaml:"cors"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	} `yaml:"log"`

	Security struct {
		HashPasswords bool `yaml:"hash_passwords" env:"HASH_PASSWORDS" env-default:"false"`
		BcryptCost    int  `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	} `yaml:"security"`

	Telemetry struct {
		Enabled       bool    `yaml:"enabled" env:"ENABLE_TRACING" env-default:"false"`
		CollectorAddr string  `yaml:"collector_addr" env:"COLLECTOR_SERVICE_ADDR" env-default:"localhost:4317"`
		ServiceName   string  `yaml:"service_name" env:"SERVICE_NAME" env-default:"users-api"`
		SampleRatio   float64 `yaml:"sample_ratio" env:"TRACE_SAMPLE_RATIO" env-default:"0.1"`
	} `yaml:"telemetry"`
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Retry.Interval <= 0 {
		return errors.Errorf("retry interval must be positive, got %s", c.Retry.Interval)
	}
	if c.Retry.MaxAttempts < 0 {
		return errors.Errorf("retry max_attempts must not be negative, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Multiplier < 1 {
		return errors.Errorf("retry multiplier must be >= 1, got %v", c.Retry.Multiplier)
	}
	return nil
}

// Load reads the config file at path, or the environment alone when path is empty.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, errors.Wrap(err, "read config from env")
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configflag := flag.String("config", "", "Path to configuration file")
		flag.Parse()
		configPath = *configflag
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
