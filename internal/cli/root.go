package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/masterylens/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// Config and Logger are set by the root command before any subcommand
	// runs. Commands built directly, as in tests, fall back to defaults.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the masterylens CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "masterylens",
		Short: "masterylens - mastery healing attribution",
		Long: `Attribute a healer's output to their healing mastery.

Reads combat-log events for one healer, removes the mastery bonus from each
heal, and reports how much healing the mastery contributed per spell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default .masterylens.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", config.DefaultArchivePath, "path to the SQLite event archive")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewFightsCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads configuration and installs the logger. Flags set on the
// command line win over the config file and environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Output.Format
	}
	if !flags.Changed("db") {
		o.Database = cfg.Archive.Path
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	return o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) database() string {
	if o.Database == "" {
		return o.config().Archive.Path
	}
	return o.Database
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
