package app

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"

	"github.com/iasql/cli/internal/deviceflow"
	"github.com/iasql/cli/internal/observability"
	"github.com/iasql/cli/internal/tokenstore"
)

// LogLevel is the minimum level of log records written.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Environment selects the IaSQL deployment the CLI talks to.
type Environment string

const (
	EnvironmentLocal      Environment = "local"
	EnvironmentProduction Environment = "production"
)

// TokenStorageType represents the different storage types supported for stored tokens.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogLevel          = LogLevelWarn
	DefaultConfigLogFormat         = LogFormatText
	DefaultConfigEnv               = EnvironmentProduction
	DefaultConfigAuthStorage       = TokenStorageTypeFile
	DefaultConfigAuthEnvKey        = "AUTH_TOKEN"
	DefaultConfigAPITimeout        = 60 * time.Second
	DefaultConfigAPIRetryMax       = 2
	DefaultConfigTelemetryExporter = observability.ExporterNone

	// KeyringService is the keyring service name tokens are stored under.
	KeyringService = "iasql-cli-token"
)

var (
	apiBaseURLs = map[Environment]string{
		EnvironmentLocal:      "http://localhost:8088/api/v1",
		EnvironmentProduction: "https://api.iasql.com/api/v1",
	}
	dbServers = map[Environment]string{
		EnvironmentLocal:      "127.0.0.1:5432",
		EnvironmentProduction: "db.iasql.com",
	}
)

// AuthConfig describes where the IaSQL token is stored and how it is obtained.
type AuthConfig struct {
	Storage TokenStorageType `json:"storage" validate:"required,oneof=file keyring"`

	// Storage-specific settings
	File        string `json:"file,omitempty"`         // For file storage: path to token file
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier

	// EnvKey names the variable holding a pre-issued token.
	EnvKey string `json:"env_key" validate:"required"`

	ShowQR      bool          `json:"show_qr"`
	PollTimeout time.Duration `json:"poll_timeout" validate:"gte=0"`
}

// NewTokenStore creates the writable TokenStore from the authentication configuration.
func (a *AuthConfig) NewTokenStore() (tokenstore.TokenStore, error) {
	switch a.Storage {
	case TokenStorageTypeFile:
		return tokenstore.NewFileStore(a.File)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringStore(KeyringService, a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// NewEnvStore creates the read-only store for the pre-issued token variable.
func (a *AuthConfig) NewEnvStore() (*tokenstore.EnvStore, error) {
	return tokenstore.NewEnvStore(a.EnvKey)
}

// OAuthConfig holds the authorization server settings.
type OAuthConfig struct {
	CodeURL  string `json:"code_url" validate:"required,url"`
	TokenURL string `json:"token_url" validate:"required,url"`
	ClientID string `json:"client_id" validate:"required"`
	Audience string `json:"audience" validate:"required"`
}

// APIConfig holds IaSQL engine API settings.
type APIConfig struct {
	// BaseURL overrides the URL derived from Env.
	BaseURL  string        `json:"base_url,omitempty" validate:"omitempty,url"`
	Timeout  time.Duration `json:"timeout" validate:"gte=0"`
	RetryMax int           `json:"retry_max" validate:"gte=0,lte=10"`
}

// TelemetryConfig selects where logs are exported.
type TelemetryConfig struct {
	Exporter string `json:"exporter" validate:"oneof=none stdout otlp-http otlp-grpc"`
}

// Config holds the application's configuration.
type Config struct {
	LogLevel       LogLevel        `json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      LogFormat       `json:"log_format" validate:"oneof=text json"`
	Env            Environment     `json:"env" validate:"oneof=local production"`
	NonInteractive bool            `json:"noninteractive"`
	Auth           AuthConfig      `json:"auth"`
	OAuth          OAuthConfig     `json:"oauth"`
	API            APIConfig       `json:"api"`
	Telemetry      TelemetryConfig `json:"telemetry"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogLevel == "" {
		c.LogLevel = DefaultConfigLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Env == "" {
		c.Env = DefaultConfigEnv
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}
	if c.Auth.EnvKey == "" {
		c.Auth.EnvKey = DefaultConfigAuthEnvKey
	}
	if c.OAuth.CodeURL == "" {
		c.OAuth.CodeURL = deviceflow.Endpoint.DeviceAuthURL
	}
	if c.OAuth.TokenURL == "" {
		c.OAuth.TokenURL = deviceflow.Endpoint.TokenURL
	}
	if c.OAuth.ClientID == "" {
		c.OAuth.ClientID = deviceflow.ClientID
	}
	if c.OAuth.Audience == "" {
		c.OAuth.Audience = deviceflow.Audience
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultConfigAPITimeout
	}
	if c.API.RetryMax == 0 {
		c.API.RetryMax = DefaultConfigAPIRetryMax
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = DefaultConfigTelemetryExporter
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			c.Auth.File = filepath.Join(home, ".iasql", ".token")
		} else if path, err := expandHome(c.Auth.File); err == nil {
			c.Auth.File = path
		} else {
			return fmt.Errorf("expanding auth.file: %w", err)
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}

// APIBaseURL returns the configured API base URL, or the one for Env.
func (c *Config) APIBaseURL() string {
	if c.API.BaseURL != "" {
		return c.API.BaseURL
	}
	return apiBaseURLs[c.Env]
}

// DBServer returns the Postgres host:port hosted dbs are reachable on.
func (c *Config) DBServer() string {
	return dbServers[c.Env]
}

// DeviceFlowConfig converts the OAuth and auth settings for the device flow.
func (c *Config) DeviceFlowConfig() deviceflow.Config {
	return deviceflow.Config{
		ClientID: c.OAuth.ClientID,
		Audience: c.OAuth.Audience,
		Scopes:   deviceflow.Scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: c.OAuth.CodeURL,
			TokenURL:      c.OAuth.TokenURL,
		},
		ShowQR:      c.Auth.ShowQR,
		PollTimeout: c.Auth.PollTimeout,
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
