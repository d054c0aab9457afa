package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/masterylens/internal/store"
)

// FightsResult is the JSON payload of the fights command.
type FightsResult struct {
	Fights []store.Fight `json:"fights"`
	Total  int           `json:"total"`
}

// NewFightsCommand creates the fights command.
func NewFightsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fights",
		Short: "List archived fights",
		Long: `List the fights in the event archive with their event counts.

Examples:
  masterylens fights
  masterylens fights --db ./raid.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFights(cmd.Context(), rootOpts, cmd)
		},
	}
	return cmd
}

func runFights(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.database())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	fights, err := st.ListFights(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list fights", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(FightsResult{Fights: fights, Total: len(fights)})
	}

	w := cmd.OutOrStdout()
	if len(fights) == 0 {
		fmt.Fprintln(w, "No fights archived.")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.AppendHeader(table.Row{"Fight", "Name", "Events", "Imports", "First", "Last"})
	for _, f := range fights {
		t.AppendRow(table.Row{f.Key, f.Name, f.Events, f.Imports, f.FirstTimestamp, f.LastTimestamp})
	}
	fmt.Fprintln(w, t.Render())
	return nil
}
