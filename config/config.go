package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is built once at startup and handed to the components that need it.
type Config struct {
	API     APIConfig     `json:"api" yaml:"api"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// APIConfig describes the upstream trading-account service.
type APIConfig struct {
	Token     string        `json:"-" yaml:"-"` // env only, never written to disk
	AccountID string        `json:"account_id" yaml:"account_id"`
	BaseURL   string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

type ServerConfig struct {
	Port           int      `json:"port" yaml:"port"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

type TradingConfig struct {
	DefaultSymbol string `json:"default_symbol" yaml:"default_symbol"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Environment variables read by Load.
const (
	EnvToken         = "METAAPI_TOKEN"
	EnvAccountID     = "ACCOUNT_ID"
	EnvDefaultSymbol = "DEFAULT_SYMBOL"
	EnvPort          = "PORT"
	EnvBaseURL       = "API_BASE_URL"
	EnvTimeout       = "API_TIMEOUT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFile       = "LOG_FILE"
	EnvCORSOrigins   = "CORS_ORIGINS"
)

var (
	ErrMissingToken     = errors.New(EnvToken + " is required")
	ErrMissingAccountID = errors.New(EnvAccountID + " is required")
)

// Default returns a configuration with sensible defaults. It has no
// credentials and does not validate until Token and AccountID are set.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port: 3000,
		},
		Trading: TradingConfig{
			DefaultSymbol: "XAUUSD",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the process configuration.
// Priority: ENV > .env file > config file (if path != "") > defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, c); err != nil {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvToken); v != "" {
		c.API.Token = v
	}
	if v := getenv(EnvAccountID); v != "" {
		c.API.AccountID = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.API.Timeout = d
	}
	if v := getenv(EnvDefaultSymbol); v != "" {
		c.Trading.DefaultSymbol = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	if v := getenv(EnvCORSOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	return nil
}

// SaveToFile saves configuration to a file (YAML or JSON based on extension).
// The API token is never written.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks that the process can start. A missing token or account
// id is fatal.
func (c *Config) Validate() error {
	if c.API.Token == "" {
		return ErrMissingToken
	}
	if c.API.AccountID == "" {
		return ErrMissingAccountID
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Trading.DefaultSymbol == "" {
		return fmt.Errorf("trading.default_symbol is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
