// Package app provides the commands of catalog-stub.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/odpi/egeria-sub150/internal/catalogtest"
	"github.com/odpi/egeria-sub150/internal/logging"
	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/internal/versions"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

// serveOptions are the settings of one serve invocation
type serveOptions struct {
	address      string
	serverName   string
	maxPageSize  int
	deniedUsers  []string
	otelEndpoint string
	otelInsecure bool
}

// NewRootCmd creates the catalog-stub command tree
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(logging.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd := &cobra.Command{
		Use:               "catalog-stub",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "In-memory metadata server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the asset owner access service from memory",
		Long: `Serve the asset owner access service from memory. Elements and relationships
are lost on exit. Events are published to /topics/out-topic as server-sent events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), serveOptions{
				address:      v.GetString("address"),
				serverName:   v.GetString("server-name"),
				maxPageSize:  v.GetInt("max-page-size"),
				deniedUsers:  v.GetStringSlice("deny-user"),
				otelEndpoint: v.GetString("otel-endpoint"),
				otelInsecure: v.GetBool("otel-insecure"),
			})
		},
	}

	flags := serveCmd.Flags()
	flags.String("address", ":9443", "Address to listen on")
	flags.String("server-name", catalogtest.DefaultServerName, "Metadata server name accepted in request paths")
	flags.Int("max-page-size", catalogtest.DefaultMaxPageSize, "Largest page returned by list requests")
	flags.StringSlice("deny-user", nil, "Users whose requests are rejected as unauthorized")
	flags.String("otel-endpoint", "", "OTLP collector endpoint (host:port); telemetry is off when empty")
	flags.Bool("otel-insecure", false, "Export telemetry over plain HTTP")
	for _, name := range []string{"address", "server-name", "max-page-size", "deny-user", "otel-endpoint", "otel-insecure"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	rootCmd.AddCommand(serveCmd)
	return rootCmd
}

// telemetryConfig enables tracing and metrics when an endpoint is given
func (o serveOptions) telemetryConfig() *telemetry.Config {
	if o.otelEndpoint == "" {
		return nil
	}
	return &telemetry.Config{
		Enabled:        true,
		ServiceName:    "catalog-stub",
		ServiceVersion: versions.GetVersionInfo().Version,
		Endpoint:       o.otelEndpoint,
		Insecure:       o.otelInsecure,
		Tracing:        &telemetry.TracingConfig{Enabled: true},
		Metrics:        &telemetry.MetricsConfig{Enabled: true},
	}
}

func (o serveOptions) stubOptions(tel *telemetry.Telemetry) []catalogtest.Option {
	opts := []catalogtest.Option{
		catalogtest.WithServerName(o.serverName),
		catalogtest.WithMaxPageSize(o.maxPageSize),
		catalogtest.WithLogger(slog.Default()),
	}
	for _, user := range o.deniedUsers {
		opts = append(opts, catalogtest.WithDeniedUser(user))
	}
	if tel != nil && o.otelEndpoint != "" {
		opts = append(opts,
			catalogtest.WithTracerProvider(tel.TracerProvider()),
			catalogtest.WithMeterProvider(tel.MeterProvider()),
		)
	}
	return opts
}

func runServe(ctx context.Context, o serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, o.telemetryConfig(), telemetry.WithGlobal())
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	stub, err := catalogtest.New(o.stubOptions(tel)...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	listener, err := net.Listen("tcp", o.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", o.address, err)
	}
	slog.Info("Serving metadata server", "address", listener.Addr().String(), "server_name", stub.ServerName())

	return serve(ctx, listener, stub)
}

// serve runs handler on listener until ctx is done, then shuts down gracefully
func serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	// No write timeout: event streams stay open.
	server := &http.Server{
		Handler:     handler,
		ReadTimeout: serverReadTimeout,
		IdleTimeout: serverIdleTimeout,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}
