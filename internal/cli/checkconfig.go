package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choripam/printd/internal/config"
)

// CheckConfigOptions holds flags for the checkconfig command.
type CheckConfigOptions struct {
	*RootOptions
	Config string
}

// NewCheckConfigCommand creates the checkconfig command.
func NewCheckConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkconfig",
		Short: "Validate the configuration file",
		Long: `Load and validate the configuration, printing the resolved values
(including applied defaults) without starting the loop.

Example:
  printd checkconfig --config ./printd.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckConfig(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "printd.yaml", "path to YAML configuration")

	return cmd
}

func runCheckConfig(opts *CheckConfigOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration invalid", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(map[string]any{
			"restaurant_id": cfg.RestaurantID,
			"endpoint":      cfg.Endpoint,
			"poll_interval": cfg.PollInterval.String(),
			"fetch_timeout": cfg.FetchTimeout.String(),
			"printer": map[string]any{
				"address":      cfg.Printer.Address,
				"dial_timeout": cfg.Printer.DialTimeout.String(),
			},
			"ledger_path":  cfg.LedgerPath,
			"journal_path": cfg.JournalPath,
			"alert_sound":  cfg.AlertSound,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration OK.")
	fmt.Fprintf(out, "  restaurant_id: %s\n", cfg.RestaurantID)
	fmt.Fprintf(out, "  endpoint:      %s\n", cfg.Endpoint)
	fmt.Fprintf(out, "  poll_interval: %s\n", cfg.PollInterval)
	fmt.Fprintf(out, "  fetch_timeout: %s\n", cfg.FetchTimeout)
	fmt.Fprintf(out, "  printer:       %s (dial timeout %s)\n", cfg.Printer.Address, cfg.Printer.DialTimeout)
	fmt.Fprintf(out, "  ledger_path:   %s\n", cfg.LedgerPath)
	fmt.Fprintf(out, "  journal_path:  %s\n", cfg.JournalPath)
	fmt.Fprintf(out, "  alert_sound:   %s\n", cfg.AlertSound)
	return nil
}
