package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/odpi/egeria-sub150/internal/validators"
	"github.com/odpi/egeria-sub150/pkg/apierrors"
)

const (
	// DefaultServiceURLName is the access service addressed when none is configured
	DefaultServiceURLName = "asset-owner"

	// DefaultMaxPageSize is the largest page requested when none is configured
	DefaultMaxPageSize = 1000
)

// Credentials are attached to every request. Set User and Password for basic
// authentication or Token for a bearer token. Leave nil for no authentication.
type Credentials struct {
	User     string
	Password string
	Token    string
}

// Config holds everything needed to reach one metadata server.
// Only PlatformURL and ServerName are required.
type Config struct {
	// PlatformURL is the root URL of the platform hosting the server, e.g. https://localhost:9443
	PlatformURL string
	// ServerName is the metadata server addressed by every request
	ServerName string
	// ServiceURLName is the access service path segment; defaults to DefaultServiceURLName
	ServiceURLName string
	// Credentials are optional
	Credentials *Credentials
	// MaxPageSize bounds the page size requested when the caller asks for "no limit"
	MaxPageSize int
	// DefaultPageSize replaces a page size of zero; defaults to MaxPageSize
	DefaultPageSize int
	// Timeout bounds each request; zero uses the HTTP client default
	Timeout time.Duration
	// MaxRetries is how often a GET is retried after a connection failure; zero disables retries
	MaxRetries uint
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// TracerProvider defaults to no tracing
	TracerProvider trace.TracerProvider
	// MeterProvider defaults to no metrics
	MeterProvider metric.MeterProvider
	// HTTPClient is a pre-built client whose transport is reused, e.g. for custom TLS
	HTTPClient *http.Client
}

// withDefaults returns a copy of c with unset optional fields filled in
func (c Config) withDefaults() Config {
	c.PlatformURL = strings.TrimSuffix(strings.TrimSpace(c.PlatformURL), "/")
	c.ServerName = strings.TrimSpace(c.ServerName)
	if c.ServiceURLName == "" {
		c.ServiceURLName = DefaultServiceURLName
	}
	if c.MaxPageSize == 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
	if c.DefaultPageSize == 0 {
		c.DefaultPageSize = c.MaxPageSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// validate checks a defaulted configuration
func (c Config) validate() error {
	const operation = "newClient"

	if c.PlatformURL == "" {
		return apierrors.NewInvalidParameter(operation, "platformURL", "the platform URL is empty")
	}
	u, err := url.Parse(c.PlatformURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apierrors.NewInvalidParameter(operation, "platformURL",
			"the platform URL %q must be an absolute http or https URL", c.PlatformURL)
	}

	if _, err := validators.ValidateServerName(c.ServerName); err != nil {
		return apierrors.NewInvalidParameter(operation, "serverName", "%v", err)
	}

	if strings.ContainsAny(c.ServiceURLName, "/?{} ") {
		return apierrors.NewInvalidParameter(operation, "serviceURLName",
			"the service URL name %q must be a single path segment", c.ServiceURLName)
	}

	if c.MaxPageSize < 0 {
		return apierrors.NewInvalidParameter(operation, "maxPageSize",
			"the maximum page size %d is negative", c.MaxPageSize)
	}
	if c.DefaultPageSize < 0 || c.DefaultPageSize > c.MaxPageSize {
		return apierrors.NewInvalidParameter(operation, "defaultPageSize",
			"the default page size %d must be between 1 and the maximum page size %d",
			c.DefaultPageSize, c.MaxPageSize)
	}

	if c.Credentials != nil && c.Credentials.Token == "" && c.Credentials.User == "" {
		return apierrors.NewInvalidParameter(operation, "credentials",
			"credentials need either a user or a token")
	}

	if c.Timeout < 0 {
		return apierrors.NewInvalidParameter(operation, "timeout", "the timeout %s is negative", c.Timeout)
	}

	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("%s/servers/%s (%s)", c.PlatformURL, c.ServerName, c.ServiceURLName)
}
