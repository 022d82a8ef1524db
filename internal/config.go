package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker-client/internal/session"
)

type Config struct {
	API           APIConfig           `mapstructure:"api"`
	Session       SessionConfig       `mapstructure:"session"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Display       DisplayConfig       `mapstructure:"display"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// ValidateContract checks traffic against the embedded OpenAPI document.
	ValidateContract bool `mapstructure:"validate_contract"`
	StrictContract   bool `mapstructure:"strict_contract"`
}

type SessionConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Profile         string        `mapstructure:"profile"`
	EncryptionKey   string        `mapstructure:"encryption_key"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ServerConfig is the local preview server, not the expense API.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DisplayConfig struct {
	// Timezone in which API dates are bucketed into months. Empty means local.
	Timezone string `mapstructure:"timezone"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig is used for every key the config file and environment leave unset.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Driver:          "sqlite",
			DSN:             DefaultSessionDSN(),
			Profile:         "default",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Server: ServerConfig{
			Port:              8089,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "warn", Format: "text"},
		},
	}
}

// DefaultSessionDSN places the SQLite session file in the user config dir.
func DefaultSessionDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "expense-tracker", "session.db")
}

// ----------------- ENV -----------------

// LoadConfigFromEnv reads the configuration from plain environment
// variables, for containers that ship without a config file.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout = time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", int(cfg.API.Timeout/time.Second))) * time.Second
	cfg.API.ValidateContract = getEnvAsBool("API_VALIDATE_CONTRACT", false)
	cfg.API.StrictContract = getEnvAsBool("API_STRICT_CONTRACT", false)

	cfg.Session.Driver = getEnv("SESSION_DRIVER", cfg.Session.Driver)
	cfg.Session.DSN = getEnv("SESSION_DSN", cfg.Session.DSN)
	cfg.Session.Profile = getEnv("SESSION_PROFILE", cfg.Session.Profile)
	cfg.Session.EncryptionKey = getEnv("SESSION_ENCRYPTION_KEY", "")
	cfg.Session.MaxOpenConns = getEnvAsInt("SESSION_MAX_OPEN_CONNS", cfg.Session.MaxOpenConns)
	cfg.Session.MaxIdleConns = getEnvAsInt("SESSION_MAX_IDLE_CONNS", cfg.Session.MaxIdleConns)

	cfg.Server.Port = getEnvAsInt("HTTP_PORT", cfg.Server.Port)
	cfg.Display.Timezone = getEnv("DISPLAY_TIMEZONE", "")

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return &cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("display config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q must be an http or https url", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if c.StrictContract && !c.ValidateContract {
		return errors.New("strict_contract requires validate_contract")
	}
	return nil
}

func (c *SessionConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("driver must be sqlite, postgres, mysql or memory, got %q", c.Driver)
	}
	if c.Driver != "memory" && c.DSN == "" {
		return errors.New("dsn is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	if c.EncryptionKey != "" {
		if _, err := session.ParseKey(c.EncryptionKey); err != nil {
			return fmt.Errorf("invalid encryption_key: %w", err)
		}
	}
	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DisplayConfig) Validate() error {
	_, err := c.Location()
	return err
}

// Location resolves Timezone, falling back to the local zone.
func (c *DisplayConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error, got %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text, got %q", c.Format)
	}
	return nil
}
