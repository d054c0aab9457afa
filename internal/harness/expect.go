package harness

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/engine"
)

// DefaultTolerance is the absolute tolerance for amount and percentage
// comparisons.
const DefaultTolerance = 0.01

// Expectations are optional checks on the report. Nil fields are skipped.
type Expectations struct {
	Tolerance *float64 `yaml:"tolerance,omitempty"`

	TotalHealing                        *float64       `yaml:"total_healing,omitempty"`
	TotalIndirectHealing                *float64       `yaml:"total_indirect_healing,omitempty"`
	TotalMasteryHealing                 *float64       `yaml:"total_mastery_healing,omitempty"`
	TotalMasteryHealingOverhealAdjusted *float64       `yaml:"total_mastery_healing_overheal_adjusted,omitempty"`
	MasteryHealingPercent               *ExpectedRatio `yaml:"mastery_healing_percent,omitempty"`

	Spells       []SpellExpectation  `yaml:"spells,omitempty"`
	SpellOrder   []combatlog.SpellID `yaml:"spell_order,omitempty"`
	AbsentSpells []combatlog.SpellID `yaml:"absent_spells,omitempty"`
	ActiveBuffs  []combatlog.SpellID `yaml:"active_buffs,omitempty"`

	// DiagnosticCodes, when set (even empty), must equal the recorded codes
	// in dispatch order.
	DiagnosticCodes *[]engine.DiagnosticCode `yaml:"diagnostic_codes,omitempty"`
}

// SpellExpectation checks one spell entry.
type SpellExpectation struct {
	SpellID                       combatlog.SpellID `yaml:"spell_id"`
	DirectAmount                  *float64          `yaml:"direct_amount,omitempty"`
	DirectPercent                 *ExpectedRatio    `yaml:"direct_percent,omitempty"`
	MasteryAmount                 *float64          `yaml:"mastery_amount,omitempty"`
	MasteryAmountOverhealAdjusted *float64          `yaml:"mastery_amount_overheal_adjusted,omitempty"`
	MasteryPercent                *ExpectedRatio    `yaml:"mastery_percent,omitempty"`
	AvgTargetHealthPercent        *ExpectedRatio    `yaml:"avg_target_health_percent,omitempty"`
	HealCount                     *int              `yaml:"heal_count,omitempty"`
}

// ExpectedRatio is a number, or "n/a" for an undefined ratio.
type ExpectedRatio struct {
	engine.Ratio
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ExpectedRatio) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && strings.EqualFold(node.Value, "n/a") {
		r.Ratio = engine.Ratio{}
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: expected a number or \"n/a\": %w", node.Line, err)
	}
	r.Ratio = engine.DefinedRatio(v)
	return nil
}

// AssertionError describes one failed expectation.
type AssertionError struct {
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// Check compares the report and diagnostics against the expectations and
// returns every mismatch.
func (x Expectations) Check(report engine.Report, diags []engine.Diagnostic) []error {
	tol := DefaultTolerance
	if x.Tolerance != nil {
		tol = *x.Tolerance
	}
	c := &checker{tol: tol}

	c.amount("total_healing", x.TotalHealing, report.TotalHealing)
	c.amount("total_indirect_healing", x.TotalIndirectHealing, report.TotalIndirectHealing)
	c.amount("total_mastery_healing", x.TotalMasteryHealing, report.TotalMasteryHealing)
	c.amount("total_mastery_healing_overheal_adjusted", x.TotalMasteryHealingOverhealAdjusted, report.TotalMasteryHealingOverhealAdjusted)
	c.ratio("mastery_healing_percent", x.MasteryHealingPercent, report.MasteryHealingPercent)

	bySpell := make(map[combatlog.SpellID]engine.SpellReport, len(report.Spells))
	for _, s := range report.Spells {
		bySpell[s.SpellID] = s
	}

	for _, want := range x.Spells {
		prefix := fmt.Sprintf("spells[%d]", want.SpellID)
		got, ok := bySpell[want.SpellID]
		if !ok {
			c.fail(prefix, "present in report", "absent")
			continue
		}
		c.amount(prefix+".direct_amount", want.DirectAmount, got.DirectAmount)
		c.ratio(prefix+".direct_percent", want.DirectPercent, got.DirectPercent)
		c.amount(prefix+".mastery_amount", want.MasteryAmount, got.MasteryAmount)
		c.amount(prefix+".mastery_amount_overheal_adjusted", want.MasteryAmountOverhealAdjusted, got.MasteryAmountOverhealAdjusted)
		c.ratio(prefix+".mastery_percent", want.MasteryPercent, got.MasteryPercent)
		c.ratio(prefix+".avg_target_health_percent", want.AvgTargetHealthPercent, got.AvgTargetHealthPercent)
		if want.HealCount != nil && *want.HealCount != got.HealCount {
			c.fail(prefix+".heal_count", fmt.Sprint(*want.HealCount), fmt.Sprint(got.HealCount))
		}
	}

	if x.SpellOrder != nil {
		order := make([]combatlog.SpellID, len(report.Spells))
		for i, s := range report.Spells {
			order[i] = s.SpellID
		}
		if fmt.Sprint(order) != fmt.Sprint(x.SpellOrder) {
			c.fail("spell_order", fmt.Sprint(x.SpellOrder), fmt.Sprint(order))
		}
	}

	for _, id := range x.AbsentSpells {
		if _, ok := bySpell[id]; ok {
			c.fail(fmt.Sprintf("spells[%d]", id), "absent", "present in report")
		}
	}

	if x.ActiveBuffs != nil && fmt.Sprint(report.ActiveBuffs) != fmt.Sprint(x.ActiveBuffs) {
		c.fail("active_buffs", fmt.Sprint(x.ActiveBuffs), fmt.Sprint(report.ActiveBuffs))
	}

	if x.DiagnosticCodes != nil {
		codes := make([]engine.DiagnosticCode, len(diags))
		for i, d := range diags {
			codes[i] = d.Code
		}
		if fmt.Sprint(codes) != fmt.Sprint(*x.DiagnosticCodes) {
			c.fail("diagnostic_codes", fmt.Sprint(*x.DiagnosticCodes), fmt.Sprint(codes))
		}
	}

	return c.errs
}

type checker struct {
	tol  float64
	errs []error
}

func (c *checker) fail(field, expected, actual string) {
	c.errs = append(c.errs, &AssertionError{Field: field, Expected: expected, Actual: actual})
}

func (c *checker) amount(field string, want *float64, got float64) {
	if want == nil {
		return
	}
	if math.Abs(*want-got) > c.tol {
		c.fail(field, fmt.Sprint(*want), fmt.Sprint(got))
	}
}

func (c *checker) ratio(field string, want *ExpectedRatio, got engine.Ratio) {
	if want == nil {
		return
	}
	switch {
	case want.Defined != got.Defined:
		c.fail(field, want.String(), got.String())
	case want.Defined && math.Abs(want.Value-got.Value) > c.tol:
		c.fail(field, want.String(), got.String())
	}
}
