package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voiceguard/internal/bootstrap"
)

const defaultRecheckInterval = 15 * time.Second

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Listen for trigger phrases until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sink := newTerminalSink(cmd.OutOrStdout())
		return withServices(ctx, sink, func(s bootstrap.Services) error {
			return runMonitor(ctx, s.Monitor, s.State, s.Config.Monitor.RecheckInterval, s.Logger)
		})
	},
}

type monitor interface {
	Start(ctx context.Context) error
	Stop()
	Reevaluate(ctx context.Context) error
	Done() <-chan struct{}
}

type refresher interface {
	Refresh(ctx context.Context) error
}

// runMonitor blocks until the session ends on its own, ctx is cancelled, or
// a periodic re-check finds that monitoring is no longer allowed. Each
// re-check reloads stored state first so that permission, plan and language
// changes made from another process apply to the running session.
func runMonitor(ctx context.Context, m monitor, state refresher, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		interval = defaultRecheckInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := m.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Reevaluate may restart the session, which replaces the channel.
		done := m.Done()
		if done == nil {
			return nil
		}
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			m.Stop()
			<-done
			return nil
		case <-ticker.C:
			if err := state.Refresh(ctx); err != nil {
				logger.Warn("reloading state for monitor re-check failed", zap.Error(err))
				continue
			}
			if err := m.Reevaluate(ctx); err != nil {
				return err
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
