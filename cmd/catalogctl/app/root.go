// Package app provides the commands of catalogctl.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/odpi/egeria-sub150/internal/config"
	"github.com/odpi/egeria-sub150/internal/logging"
	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/internal/versions"
	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/catalog"
)

const (
	defaultCallerID = "catalogctl"
	shutdownTimeout = 10 * time.Second
)

// NewRootCmd creates the catalogctl command tree. Flags may also be set with
// CATALOG_ prefixed environment variables, e.g. CATALOG_CONFIG.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(logging.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd := &cobra.Command{
		Use:               "catalogctl",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Manage metadata through the asset owner access service",
		Long: `catalogctl creates, reads, updates and deletes metadata elements and the
relationships between them, and watches the events published by the service.

Connection settings are read from a YAML configuration file (--config).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to configuration file (YAML format)")
	flags.String("user", "", "User the requests are made on behalf of; overrides userId in the configuration")
	for _, name := range []string{"config", "user"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	rootCmd.AddCommand(
		newElementCmd(v),
		newRelationshipCmd(v),
		newEventsCmd(v),
		newKindsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// session holds what one command needs to reach the metadata server
type session struct {
	owner     *catalog.AssetOwner
	config    *config.Config
	userID    string
	logger    *slog.Logger
	telemetry *telemetry.Telemetry
}

func openSession(ctx context.Context, v *viper.Viper) (*session, error) {
	path := v.GetString("config")
	if path == "" {
		return nil, errors.New("a configuration file is required: set --config or CATALOG_CONFIG")
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	userID := v.GetString("user")
	if userID == "" {
		userID = cfg.UserID
	}
	if userID == "" {
		return nil, errors.New("a user is required: set --user or userId in the configuration")
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry, telemetry.WithGlobal())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger := slog.Default().With("server", cfg.ServerName)
	clientCfg, err := cfg.ClientConfig(logger, tel.TracerProvider(), tel.MeterProvider())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	owner, err := catalog.NewAssetOwner(clientCfg)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	return &session{
		owner:     owner,
		config:    cfg,
		userID:    userID,
		logger:    logger,
		telemetry: tel,
	}, nil
}

func (s *session) callerID() string {
	if s.config.CallerID != "" {
		return s.config.CallerID
	}
	return defaultCallerID
}

// Close flushes telemetry
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.Warn("Failed to shutdown telemetry", "error", err)
	}
}

// withSession opens a session for the duration of run
func withSession(
	v *viper.Viper, run func(cmd *cobra.Command, args []string, s *session) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), v)
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd, args, s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseProperties decodes the --properties flag; an empty value yields nil
func parseProperties(cmd *cobra.Command) (*api.PropertyMap, error) {
	raw, err := cmd.Flags().GetString("properties")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var props api.PropertyMap
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("--properties must be a JSON object: %w", err)
	}
	return &props, nil
}

func pageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("start", 0, "Index of the first result")
	cmd.Flags().Int("page-size", 0, "Maximum number of results (0 = server default)")
}

func page(cmd *cobra.Command) (startFrom, pageSize int, err error) {
	if startFrom, err = cmd.Flags().GetInt("start"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = cmd.Flags().GetInt("page-size"); err != nil {
		return 0, 0, err
	}
	return startFrom, pageSize, nil
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the element and relationship kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"elements":      catalog.ElementKinds(),
				"relationships": catalog.RelationshipKinds(),
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "catalogctl %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

// writeEventLine writes event as one compact JSON line
func writeEventLine(w io.Writer, event api.AssetOwnerEvent) error {
	return json.NewEncoder(w).Encode(event)
}
