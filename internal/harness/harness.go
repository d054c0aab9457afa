package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/masterylens/internal/catalog"
	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/engine"
)

// Result is the outcome of one scenario.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Errors lists failed expectations.
	Errors []string `json:"errors,omitempty"`

	Report      engine.Report       `json:"report"`
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
}

// AddError records a failed expectation.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario through a fresh engine and checks its
// expectations. The returned error covers setup problems only; failed
// expectations are reported in Result.
func Run(s *Scenario) (*Result, error) {
	cat := catalog.Default()
	if s.Catalog != "" {
		loaded, err := catalog.Load(s.resolve(s.Catalog))
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		cat = loaded
	}

	actor := engine.NewActor(combatlog.ActorID(s.Actor.ID), s.Actor.Rating)
	if s.Actor.BasePercent != nil {
		actor.BaseMasteryPercent = *s.Actor.BasePercent
	}
	if s.Actor.RatingPerPercent != nil {
		actor.RatingPerPercent = *s.Actor.RatingPerPercent
	}

	eng, err := engine.New(actor, cat,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	events, err := s.LoadEvents()
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	eng.DispatchAll(events)

	result := &Result{
		Pass:        true,
		Report:      eng.Summarize(),
		Diagnostics: eng.Diagnostics(),
	}
	for _, e := range s.Expect.Check(result.Report, result.Diagnostics) {
		result.AddError(e.Error())
	}
	return result, nil
}
