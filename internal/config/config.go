package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"

	DefaultTimeout = 30 * time.Second
)

// Config holds all configuration for the cafeteria client
type Config struct {
	API      APIConfig      `yaml:"api"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

// APIConfig points the client at the cafeteria backend
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig selects where token, role and current user are kept
type SessionConfig struct {
	Store    string `yaml:"store"`
	Path     string `yaml:"path"`
	Terminal string `yaml:"terminal"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Default returns a configuration usable against a local backend
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: DefaultTimeout,
		},
		Session: SessionConfig{
			Store: StoreFile,
			Path:  defaultSessionPath(),
		},
		Database: DatabaseConfig{Port: 5432},
		RabbitMQ: RabbitMQConfig{Port: 5672},
	}
}

// Load reads configuration from a YAML file, applies CAFETERIA_* environment
// overrides and validates the result
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from defaults and the environment only
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides values with non-empty variables returned by getenv
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("CAFETERIA_API_URL", &c.API.BaseURL)
	if v := getenv("CAFETERIA_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}

	setString("CAFETERIA_SESSION_STORE", &c.Session.Store)
	setString("CAFETERIA_SESSION_PATH", &c.Session.Path)
	setString("CAFETERIA_TERMINAL", &c.Session.Terminal)

	setString("CAFETERIA_DB_HOST", &c.Database.Host)
	setInt("CAFETERIA_DB_PORT", &c.Database.Port)
	setString("CAFETERIA_DB_USER", &c.Database.User)
	setString("CAFETERIA_DB_PASSWORD", &c.Database.Password)
	setString("CAFETERIA_DB_NAME", &c.Database.Database)

	setString("CAFETERIA_RABBITMQ_HOST", &c.RabbitMQ.Host)
	setInt("CAFETERIA_RABBITMQ_PORT", &c.RabbitMQ.Port)
	setString("CAFETERIA_RABBITMQ_USER", &c.RabbitMQ.User)
	setString("CAFETERIA_RABBITMQ_PASSWORD", &c.RabbitMQ.Password)
}

// Validate checks the values the client cannot start without
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	switch c.Session.Store {
	case StoreFile:
		if c.Session.Path == "" {
			return fmt.Errorf("session.path is required for the file store")
		}
	case StorePostgres:
		if !c.DatabaseEnabled() {
			return fmt.Errorf("database.host is required for the postgres session store")
		}
	default:
		return fmt.Errorf("unknown session store: %s", c.Session.Store)
	}
	return nil
}

// DatabaseEnabled reports whether a PostgreSQL server is configured
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// RabbitMQEnabled reports whether a RabbitMQ broker is configured
func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.Host != ""
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.PathEscape(c.Database.User), url.PathEscape(c.Database.Password),
		c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		url.PathEscape(c.RabbitMQ.User), url.PathEscape(c.RabbitMQ.Password),
		c.RabbitMQ.Host, c.RabbitMQ.Port)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cafeteria-session.json"
	}
	return filepath.Join(dir, "cafeteria", "session.json")
}
