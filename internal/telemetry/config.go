// Package telemetry sets up OpenTelemetry for catalogctl and catalog-stub and
// defines the instruments the catalog client and event client record.
package telemetry

import (
	"fmt"
	"time"
)

// Defaults applied to an enabled Config
const (
	DefaultServiceName     = "egeria-catalog-client"
	DefaultServiceVersion  = "unknown"
	DefaultEndpoint        = "localhost:4318"
	DefaultSampling        = 1.0
	DefaultMetricsInterval = 60 * time.Second
)

// Config is the telemetry block of a catalog configuration file. Tracing and
// metrics are exported over OTLP/HTTP to one collector.
type Config struct {
	Enabled        bool   `yaml:"enabled"`
	ServiceName    string `yaml:"serviceName,omitempty"`
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the collector's host:port; the exporters add the signal path
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`

	// Headers go on every export request, e.g. a collector API key
	Headers map[string]string `yaml:"headers,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig enables span export. A Sampling of 0 keeps every root span.
type TracingConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig enables metric export every Interval, e.g. "30s"
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

func (c *Config) tracingEnabled() bool { return c.Tracing != nil && c.Tracing.Enabled }

func (c *Config) metricsEnabled() bool { return c.Metrics != nil && c.Metrics.Enabled }

// withDefaults returns a copy of c with unset fields filled in. Tracing and
// Metrics are copied so the caller's config is left untouched.
func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = DefaultServiceVersion
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Tracing != nil {
		tracing := *c.Tracing
		if tracing.Sampling == 0 {
			tracing.Sampling = DefaultSampling
		}
		c.Tracing = &tracing
	}
	if c.Metrics != nil {
		metrics := *c.Metrics
		if metrics.Interval <= 0 {
			metrics.Interval = DefaultMetricsInterval
		}
		c.Metrics = &metrics
	}
	return c
}

// Validate reports the first problem in an enabled configuration. Settings
// of a disabled signal are not checked.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if _, ok := c.Headers[""]; ok {
		return fmt.Errorf("headers: header name must not be empty")
	}
	if c.tracingEnabled() && (c.Tracing.Sampling < 0 || c.Tracing.Sampling > 1) {
		return fmt.Errorf("tracing: sampling must be between 0.0 and 1.0, got %g", c.Tracing.Sampling)
	}
	if c.metricsEnabled() && c.Metrics.Interval < 0 {
		return fmt.Errorf("metrics: interval must not be negative, got %s", c.Metrics.Interval)
	}
	return nil
}
