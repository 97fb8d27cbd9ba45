// Package config provides configuration loading for the catalog tools.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/internal/validators"
	"github.com/odpi/egeria-sub150/pkg/catalog"
)

const (
	// PasswordEnvVar holds the password when no passwordFile is configured
	PasswordEnvVar = "CATALOG_PASSWORD"

	// TokenEnvVar holds the bearer token when no tokenFile is configured
	TokenEnvVar = "CATALOG_TOKEN"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// PlatformURL is the root URL of the platform hosting the metadata server
	PlatformURL string `yaml:"platformURL"`

	// ServerName is the metadata server addressed by every request
	ServerName string `yaml:"serverName"`

	// ServiceURLName is the access service path segment; defaults to "asset-owner"
	ServiceURLName string `yaml:"serviceURLName,omitempty"`

	// UserID is the user requests are made on behalf of when none is given
	UserID string `yaml:"userId,omitempty"`

	// CallerID identifies the event client to the server
	CallerID string `yaml:"callerId,omitempty"`

	Credentials *CredentialsConfig `yaml:"credentials,omitempty"`
	Paging      *PagingConfig      `yaml:"paging,omitempty"`

	// Timeout bounds each request, e.g. "30s"
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxRetries is how often a lookup is retried after a connection failure
	MaxRetries uint `yaml:"maxRetries,omitempty"`

	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// CredentialsConfig defines how requests authenticate. Set user for basic
// authentication or token for a bearer token.
type CredentialsConfig struct {
	// User is the basic authentication user
	User string `yaml:"user,omitempty"`

	// PasswordFile is the path to a file containing the password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Token is a bearer token. Prefer TokenFile or the CATALOG_TOKEN variable.
	Token string `yaml:"token,omitempty"`

	// TokenFile is the path to a file containing the bearer token
	TokenFile string `yaml:"tokenFile,omitempty"`
}

// PagingConfig bounds list requests
type PagingConfig struct {
	// MaxPageSize is the page size requested when none is given
	MaxPageSize int `yaml:"maxPageSize,omitempty"`

	// DefaultPageSize replaces a page size of zero; defaults to MaxPageSize
	DefaultPageSize int `yaml:"defaultPageSize,omitempty"`
}

// GetPassword returns the password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from CATALOG_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (c *CredentialsConfig) GetPassword() (string, error) {
	if c.PasswordFile != "" {
		return readSecret(c.PasswordFile)
	}

	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no password configured for user %s: set passwordFile or %s environment variable", c.User, PasswordEnvVar,
	)
}

// GetToken returns the bearer token from Token, TokenFile or the
// CATALOG_TOKEN environment variable, in that order. An empty token is not
// an error.
func (c *CredentialsConfig) GetToken() (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	if c.TokenFile != "" {
		return readSecret(c.TokenFile)
	}
	return os.Getenv(TokenEnvVar), nil
}

func readSecret(path string) (string, error) {
	// Use filepath.Clean to prevent path traversal attacks
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetServiceURLName returns the access service, using "asset-owner" if not specified
func (c *Config) GetServiceURLName() string {
	if c.ServiceURLName == "" {
		return catalog.DefaultServiceURLName
	}
	return c.ServiceURLName
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.PlatformURL == "" {
		return fmt.Errorf("platformURL is required")
	}
	if _, err := validators.ValidateServerName(c.ServerName); err != nil {
		return fmt.Errorf("serverName: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if err := c.Credentials.validate(); err != nil {
		return err
	}
	if err := c.Paging.validate(); err != nil {
		return err
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	return nil
}

func (c *CredentialsConfig) validate() error {
	if c == nil {
		return nil
	}
	if c.Token != "" && c.TokenFile != "" {
		return fmt.Errorf("credentials: only one of token or tokenFile may be specified")
	}
	if c.User == "" && c.PasswordFile != "" {
		return fmt.Errorf("credentials: passwordFile requires user")
	}
	if c.User != "" && (c.Token != "" || c.TokenFile != "") {
		return fmt.Errorf("credentials: user and token are mutually exclusive")
	}
	return nil
}

func (p *PagingConfig) validate() error {
	if p == nil {
		return nil
	}
	if p.MaxPageSize < 0 {
		return fmt.Errorf("paging.maxPageSize must not be negative")
	}
	if p.DefaultPageSize < 0 {
		return fmt.Errorf("paging.defaultPageSize must not be negative")
	}
	if p.MaxPageSize > 0 && p.DefaultPageSize > p.MaxPageSize {
		return fmt.Errorf("paging.defaultPageSize %d exceeds paging.maxPageSize %d", p.DefaultPageSize, p.MaxPageSize)
	}
	return nil
}

// ClientConfig builds the catalog client configuration, resolving secrets
func (c *Config) ClientConfig(
	logger *slog.Logger, tp trace.TracerProvider, mp metric.MeterProvider,
) (catalog.Config, error) {
	cfg := catalog.Config{
		PlatformURL:    c.PlatformURL,
		ServerName:     c.ServerName,
		ServiceURLName: c.GetServiceURLName(),
		Timeout:        c.Timeout,
		MaxRetries:     c.MaxRetries,
		Logger:         logger,
		TracerProvider: tp,
		MeterProvider:  mp,
	}
	if c.Paging != nil {
		cfg.MaxPageSize = c.Paging.MaxPageSize
		cfg.DefaultPageSize = c.Paging.DefaultPageSize
	}

	if c.Credentials == nil {
		return cfg, nil
	}
	if c.Credentials.User != "" {
		password, err := c.Credentials.GetPassword()
		if err != nil {
			return catalog.Config{}, err
		}
		cfg.Credentials = &catalog.Credentials{User: c.Credentials.User, Password: password}
		return cfg, nil
	}

	token, err := c.Credentials.GetToken()
	if err != nil {
		return catalog.Config{}, err
	}
	if token != "" {
		cfg.Credentials = &catalog.Credentials{Token: token}
	}
	return cfg, nil
}
