package app

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/events"
)

func newEventsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Receive the events published by the service",
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print each event as a JSON line until interrupted",
		Args:  cobra.NoArgs,
		RunE: withSession(v, func(cmd *cobra.Command, _ []string, s *session) error {
			limit, err := cmd.Flags().GetInt("count")
			if err != nil {
				return err
			}
			return watchEvents(cmd, s, limit)
		}),
	}
	watch.Flags().Int("count", 0, "Exit after this many events (0 = run until interrupted)")

	cmd.AddCommand(watch)
	return cmd
}

func watchEvents(cmd *cobra.Command, s *session, limit int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := events.NewClient(s.owner, events.Options{
		CallerID:      s.callerID(),
		Logger:        s.logger,
		MeterProvider: s.telemetry.MeterProvider(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.logger.Warn("Failed to close event client", "error", err)
		}
	}()

	var (
		mu       sync.Mutex
		received int
		out      = cmd.OutOrStdout()
	)
	listener := events.ListenerFunc(func(_ context.Context, event api.AssetOwnerEvent) {
		mu.Lock()
		defer mu.Unlock()
		if limit > 0 && received >= limit {
			return
		}
		if err := writeEventLine(out, event); err != nil {
			s.logger.Warn("Failed to write event", "error", err)
		}
		received++
		if limit > 0 && received >= limit {
			cancel()
		}
	})

	if err := client.RegisterListener(ctx, s.userID, listener); err != nil {
		return err
	}
	s.logger.Info("Watching events", "caller_id", client.CallerID())

	<-ctx.Done()
	return nil
}
