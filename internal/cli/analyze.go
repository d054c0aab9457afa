package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/masterylens/internal/catalog"
	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/engine"
	"github.com/roach88/masterylens/internal/render"
	"github.com/roach88/masterylens/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Actor      int64
	Rating     float64
	EventsFile string
	Fight      string
	After      int64 // archive seq to resume after
	Catalog    string
	Title      string
}

// AnalyzeResult is the JSON payload of the analyze command.
type AnalyzeResult struct {
	Report      engine.Report       `json:"report"`
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
	Stats       engine.Stats        `json:"stats"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Attribute one healer's healing to mastery",
		Long: `Attribute one healer's healing to mastery.

Events come from a JSON log file (--events) or an archived fight (--fight).
The mastery rating comes from --rating, or from the healer's combatantinfo
event when the flag is not set.

Exit codes:
  0 - Report produced
  2 - Command error (missing input, unknown actor, bad catalog, etc.)

Examples:
  masterylens analyze --actor 12 --events fight.json
  masterylens analyze --actor 12 --rating 2400 --fight raid-3
  masterylens analyze --fight raid-3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Actor, "actor", 0, "tracked healer's actor ID")
	cmd.Flags().Float64Var(&opts.Rating, "rating", 0, "mastery rating (default: from combatantinfo)")
	cmd.Flags().StringVar(&opts.EventsFile, "events", "", "JSON combat-log file")
	cmd.Flags().StringVar(&opts.Fight, "fight", "", "archived fight key")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "skip archived events up to this seq")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "spell catalog file (.yaml or .cue)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "report title")

	return cmd
}

func runAnalyze(ctx context.Context, opts *AnalyzeOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if (opts.EventsFile == "") == (opts.Fight == "") {
		return NewExitError(ExitCommandError, "exactly one of --events or --fight is required")
	}
	cfg := opts.config()
	log := opts.logger()

	cat, err := loadCatalog(opts.Catalog, cfg.Catalog)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	events, actorID, err := loadAnalyzeEvents(ctx, opts)
	if err != nil {
		return err
	}

	actor := engine.NewActor(actorID, opts.Rating)
	actor.BaseMasteryPercent = cfg.Mastery.BasePercent
	actor.RatingPerPercent = cfg.Mastery.RatingPerPercent
	if !cmd.Flags().Changed("rating") {
		if rating, ok := combatantRating(events, actorID); ok {
			actor.MasteryRating = rating
			log.Debug("mastery rating from combatantinfo", "actor", actorID, "rating", rating)
		} else {
			log.Warn("no --rating and no combatantinfo for actor; using base mastery", "actor", actorID)
		}
	}

	eng, err := engine.New(actor, cat,
		engine.WithLogger(log),
		engine.WithClock(engine.NewClockAt(opts.After)),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid analysis setup", err)
	}

	if err := stream(ctx, eng, events); err != nil {
		return WrapExitError(ExitCommandError, "analysis interrupted", err)
	}
	report := eng.Summarize()
	diags := eng.Diagnostics()

	log.Info("analysis complete",
		"actor", actorID,
		"events", eng.Stats().Seen,
		"heals", eng.Stats().Heals,
		"diagnostics", len(diags),
	)

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(AnalyzeResult{
			Report:      report,
			Diagnostics: diags,
			Stats:       eng.Stats(),
		})
	}

	text := render.NewText(render.Options{
		Color:    cfg.Output.Color,
		Language: cfg.Output.Tag(),
		Title:    opts.Title,
	})
	if err := text.Render(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	f := opts.formatter(cmd)
	for _, d := range diags {
		f.VerboseLog("%s", d.String())
	}
	return nil
}

// loadAnalyzeEvents reads the event stream and resolves the tracked actor.
func loadAnalyzeEvents(ctx context.Context, opts *AnalyzeOptions) ([]combatlog.Event, combatlog.ActorID, error) {
	actorID := combatlog.ActorID(opts.Actor)

	if opts.EventsFile != "" {
		if actorID == 0 {
			return nil, 0, NewExitError(ExitCommandError, "--actor is required with --events")
		}
		events, err := combatlog.DecodeFile(opts.EventsFile)
		if err != nil {
			return nil, 0, WrapExitError(ExitCommandError, "failed to read events", err)
		}
		return events, actorID, nil
	}

	st, err := store.Open(opts.database())
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	stored, err := st.ReadEvents(ctx, opts.Fight, opts.After)
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to read fight", err)
	}
	if len(stored) == 0 && opts.After == 0 {
		return nil, 0, NewExitError(ExitCommandError, fmt.Sprintf("fight %q not found or empty", opts.Fight))
	}

	if actorID == 0 {
		healers, err := st.ActorIDs(ctx, opts.Fight)
		if err != nil {
			return nil, 0, WrapExitError(ExitCommandError, "failed to list healers", err)
		}
		if len(healers) != 1 {
			return nil, 0, NewExitError(ExitCommandError,
				fmt.Sprintf("--actor is required: fight %q has healers %s", opts.Fight, formatActors(healers)))
		}
		actorID = healers[0]
	}
	return store.Events(stored), actorID, nil
}

// stream delivers events through a Feed so a cancelled context stops the
// analysis between events.
func stream(ctx context.Context, eng *engine.Engine, events []combatlog.Event) error {
	feed := engine.NewFeed(eng)
	go func() {
		defer feed.Stop()
		for _, ev := range events {
			if !feed.Enqueue(ev) {
				return
			}
		}
	}()
	return feed.Run(ctx)
}

// combatantRating returns the last mastery rating reported for actor.
func combatantRating(events []combatlog.Event, actor combatlog.ActorID) (float64, bool) {
	var rating float64
	found := false
	for _, ev := range events {
		if ev.Type != combatlog.TypeCombatantInfo || ev.SourceID != actor {
			continue
		}
		if v, ok := combatlog.Value(ev.Mastery); ok {
			rating = float64(v)
			found = true
		}
	}
	return rating, found
}

// loadCatalog loads the flag path, else the configured path, else the
// built-in table.
func loadCatalog(flagPath, configPath string) (*catalog.Catalog, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func formatActors(ids []combatlog.ActorID) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(int64(id))
	}
	return strings.Join(parts, ", ")
}
