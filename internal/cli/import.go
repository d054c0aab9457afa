package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Fight  string
	Name   string
	Append bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <events-file>",
		Short: "Archive a combat-log file as a fight",
		Long: `Archive a combat-log file in the SQLite event archive.

Events keep their file order. Importing the same file twice is a no-op;
importing a different log under an existing key fails unless --append is
set, which numbers the new events after the fight's last event.

Exit codes:
  0 - Events archived
  1 - Fight already holds different events
  2 - Command error (unreadable file, database error, etc.)

Examples:
  masterylens import --fight raid-3 fight.json
  masterylens import --fight raid-3 --append page2.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fight, "fight", "", "fight key (required)")
	_ = cmd.MarkFlagRequired("fight")
	cmd.Flags().StringVar(&opts.Name, "name", "", "fight display name")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "append after the fight's existing events")

	return cmd
}

func runImport(ctx context.Context, opts *ImportOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	events, err := combatlog.DecodeFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	st, err := store.Open(opts.database())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	result, err := st.Import(ctx, opts.Fight, events, store.ImportOptions{
		Name:   opts.Name,
		Source: path,
		Append: opts.Append,
	})
	if errors.Is(err, store.ErrFightConflict) {
		return WrapExitError(ExitFailure, fmt.Sprintf("fight %q differs from %s (use --append to add events)", opts.Fight, path), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "import failed", err)
	}

	opts.logger().Info("imported",
		"fight", result.FightKey,
		"import_id", result.ImportID,
		"inserted", result.Inserted,
		"duplicate", result.Duplicate,
	)

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Imported %d events into %s (%d new, %d already archived)\n",
		result.Events, result.FightKey, result.Inserted, result.Duplicate)
	fmt.Fprintf(w, "  First seq: %d\n", result.FirstSeq)
	fmt.Fprintf(w, "  Import ID: %s\n", result.ImportID)
	return nil
}
