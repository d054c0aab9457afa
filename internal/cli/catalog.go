package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/masterylens/internal/catalog"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [file]",
		Short: "Validate and print a spell catalog",
		Long: `Validate and print a spell catalog.

Without a file, prints the configured catalog or the built-in Restoration
Shaman table. YAML and CUE (.cue) files are accepted.

Exit codes:
  0 - Catalog is valid
  2 - Catalog could not be read or is invalid

Examples:
  masterylens catalog
  masterylens catalog ./druid.yaml
  masterylens catalog ./druid.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runCatalog(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runCatalog(opts *RootOptions, path string, cmd *cobra.Command) error {
	cat, err := loadCatalog(path, opts.config().Catalog)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid catalog", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(catalog.File{
			Name:              cat.Name(),
			MasteryBoosted:    cat.Boosted(),
			IndirectlyBoosted: cat.Indirect(),
			Buffs:             cat.Buffs(),
		})
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.AppendHeader(table.Row{"Kind", "Spell ID", "Name"})
	groups := []struct {
		kind    string
		entries []catalog.Entry
	}{
		{"mastery-boosted", cat.Boosted()},
		{"indirect", cat.Indirect()},
		{"buff", cat.Buffs()},
	}
	for _, g := range groups {
		for _, e := range g.entries {
			t.AppendRow(table.Row{g.kind, int64(e.ID), e.Name})
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Catalog %s\n", cat.Name())
	fmt.Fprintln(w, t.Render())
	return nil
}
