package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/choripam/printd/internal/config"
	"github.com/choripam/printd/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Config  string
	Journal string // overrides the config's journal path when set
	OrderID string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past dispatch attempts",
		Long: `Query the dispatch journal: one row per print attempt with the
outcome of every step (alert, kitchen ticket, separator, receipt) and
whether the ledger was committed.

A kitchen ticket that failed while the receipt succeeded shows up here
even though the order will never be reprinted automatically.

Examples:
  printd history --config ./printd.yaml
  printd history --config ./printd.yaml --order O1
  printd history --db ./printd.db -n 50 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "printd.yaml", "path to YAML configuration")
	cmd.Flags().StringVar(&opts.Journal, "db", "", "path to journal database (overrides config)")
	cmd.Flags().StringVar(&opts.OrderID, "order", "", "show attempts for a single order id")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum rows to show")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	path := opts.Journal
	if path == "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config (use --db to bypass)", err)
		}
		path = cfg.JournalPath
	}

	jnl, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open dispatch journal", err)
	}
	defer jnl.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var records []journal.Record
	if opts.OrderID != "" {
		records, err = jnl.ByOrder(ctx, opts.OrderID, opts.Limit)
	} else {
		records, err = jnl.Recent(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to query journal", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dispatch attempts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTIME\tORDER\tKIND\tNOTIFY\tKITCHEN\tSEP\tRECEIPT\tCOMMITTED")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			rec.Seq,
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.OrderID,
			rec.Kind,
			rec.Notify,
			rec.Kitchen,
			rec.Separator,
			rec.Receipt,
			rec.Committed,
		)
	}
	return w.Flush()
}
