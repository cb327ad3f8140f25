package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the hooks commands share.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Open builds the App per command. Defaults to OpenFromEnv.
	Open Opener
	// Now is the clock for default dates.
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the budgetctl command tree. A nil open uses the
// environment-configured store.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{Open: open, Now: time.Now}
	if opts.Open == nil {
		opts.Open = OpenFromEnv
	}

	cmd := &cobra.Command{
		Use:   "budgetctl",
		Short: "Manage expenses, budgets and income from the terminal",
		Long: `budgetctl works against the same store as the budgetly server,
selected by DATA_BACKEND. Mutations publish events when AMQP_URL is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log informational messages to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewExpenseCommand(opts))
	cmd.AddCommand(NewBudgetCommand(opts))
	cmd.AddCommand(NewIncomeCommand(opts))
	cmd.AddCommand(NewInsightsCommand(opts))

	return cmd
}
