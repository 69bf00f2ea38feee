package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/choripam/printd/internal/config"
	"github.com/choripam/printd/internal/engine"
	"github.com/choripam/printd/internal/journal"
	"github.com/choripam/printd/internal/ledger"
	"github.com/choripam/printd/internal/notify"
	"github.com/choripam/printd/internal/printer"
	"github.com/choripam/printd/internal/source"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the order printing loop",
		Long: `Start the polling loop: fetch pending orders, print new or modified
ones to the kitchen and receipt printer, and record successful dispatches
in the ledger so they are never repeated.

The loop runs until interrupted (SIGINT/SIGTERM) and degrades to
skip-and-retry on every fault: an unreachable backend or printer is
retried on the next cycle, never fatal.

Example:
  printd run --config /etc/printd/printd.yaml
  printd run --config ./printd.yaml --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "printd.yaml", "path to YAML configuration")

	return cmd
}

func runDaemon(opts *RunOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	slog.Info("configuration loaded",
		"restaurant", cfg.RestaurantID,
		"endpoint", cfg.Endpoint,
		"interval", cfg.PollInterval.Std(),
	)

	led := ledger.Load(cfg.LedgerPath)

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open dispatch journal", err)
	}
	defer func() {
		if closeErr := jnl.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	eng := engine.New(
		cfg.PollInterval.Std(),
		source.NewGraphQL(cfg.Endpoint, cfg.RestaurantID, cfg.FetchTimeout.Std()),
		printer.NewNetwork(cfg.Printer.Address, cfg.Printer.DialTimeout.Std()),
		notify.NewSound(cfg.AlertSound),
		led,
		engine.WithRecorder(jnl),
	)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching orders for %q every %s.\n", cfg.RestaurantID, cfg.PollInterval)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Order printing stopped.")
	return nil
}

// setupLogging configures the process-wide slog handler.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
