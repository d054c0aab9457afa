package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/engine"
	"github.com/roach88/masterylens/internal/mastery"
)

// Snapshot encodes a scenario result as canonical JSON for golden files.
// Amounts become integers and ratios fixed four-decimal strings, since
// canonical JSON forbids floats.
func Snapshot(name string, r *Result) ([]byte, error) {
	spells := make([]any, len(r.Report.Spells))
	for i, s := range r.Report.Spells {
		m := map[string]any{
			"spell_id":                         int64(s.SpellID),
			"direct_amount":                    amount(s.DirectAmount),
			"direct_percent":                   ratio(s.DirectPercent),
			"mastery_amount":                   amount(s.MasteryAmount),
			"mastery_amount_overheal_adjusted": amount(s.MasteryAmountOverhealAdjusted),
			"mastery_percent":                  ratio(s.MasteryPercent),
			"avg_target_health_percent":        ratio(s.AvgTargetHealthPercent),
			"heal_count":                       s.HealCount,
		}
		if s.Name != "" {
			m["name"] = s.Name
		}
		spells[i] = m
	}

	indirect := make([]any, len(r.Report.Indirect))
	for i, s := range r.Report.Indirect {
		m := map[string]any{
			"spell_id":      int64(s.SpellID),
			"direct_amount": amount(s.DirectAmount),
		}
		if s.Name != "" {
			m["name"] = s.Name
		}
		indirect[i] = m
	}

	diags := make([]any, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		diags[i] = map[string]any{
			"seq":      d.Seq,
			"code":     string(d.Code),
			"spell_id": int64(d.SpellID),
		}
	}

	snapshot := map[string]any{
		"scenario_name":                           name,
		"actor_id":                                int64(r.Report.ActorID),
		"mastery_percent":                         ratio(engine.DefinedRatio(r.Report.MasteryPercent)),
		"total_healing":                           amount(r.Report.TotalHealing),
		"total_indirect_healing":                  amount(r.Report.TotalIndirectHealing),
		"total_mastery_healing":                   amount(r.Report.TotalMasteryHealing),
		"total_mastery_healing_overheal_adjusted": amount(r.Report.TotalMasteryHealingOverhealAdjusted),
		"mastery_healing_percent":                 ratio(r.Report.MasteryHealingPercent),
		"spells":                                  spells,
		"indirect":                                indirect,
		"diagnostics":                             diags,
	}
	return combatlog.MarshalCanonical(snapshot)
}

func amount(v float64) int64 {
	return int64(mastery.Round(v))
}

func ratio(r engine.Ratio) string {
	if !r.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 4, 64)
}

// RunWithGolden runs a scenario, fails t on unmet expectations, and compares
// its snapshot with testdata/golden/<name>.golden.
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", s.Name, msg)
	}

	if err := AssertGolden(t, s.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot with its golden file.
func AssertGolden(t *testing.T, name string, r *Result) error {
	t.Helper()

	data, err := Snapshot(name, r)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
