// Package mastery implements the inverse-heal arithmetic for a healing
// mastery that scales with the target's missing health.
//
// An observed heal is modeled as
//
//	observed = base * (1 + M/100 * missing)
//
// where M is the mastery percentage (0-100 scale) and missing is the target's
// missing-health fraction before the heal landed. All functions here are pure.
//
// Rounding matches the log tooling these numbers are compared against:
// halves round toward positive infinity.
package mastery

import (
	"errors"
	"math"
)

var (
	// ErrZeroMaxHealth reports a heal on a target with no max health.
	ErrZeroMaxHealth = errors.New("max health is zero")

	// ErrNonFinite reports NaN or infinite inputs or intermediate results.
	ErrNonFinite = errors.New("non-finite value")
)

// Heal holds the event fields the math needs.
type Heal struct {
	// Amount is the effective healing that raised health.
	Amount float64
	// Overheal is the healing wasted beyond missing health.
	Overheal float64
	// MaxHealth is the target's maximum health.
	MaxHealth float64
	// HealthAfter is the target's health reported after the heal.
	HealthAfter float64
}

// Attribution is the decomposition of one heal.
type Attribution struct {
	// PreHealHealthPercent is the target's health before the heal, 0-100.
	PreHealHealthPercent float64
	// Clamped is set when the raw pre-heal percentage was outside [0,100].
	Clamped bool
	// Multiplier is 1 + M/100 * missing fraction.
	Multiplier float64
	// BaseHeal is the heal with the mastery bonus removed.
	BaseHeal float64
	// Attributed is the raw mastery contribution.
	Attributed float64
	// AttributedOverhealAdjusted excludes mastery healing that only added overheal.
	AttributedOverhealAdjusted float64
}

// Round rounds half toward positive infinity.
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// PreHealHealthPercent returns how full the target was before the heal, in
// percent, clamped to [0,100]. clamped reports whether clamping occurred.
func PreHealHealthPercent(amount, maxHealth, healthAfter float64) (pct float64, clamped bool, err error) {
	if maxHealth == 0 {
		return 0, false, ErrZeroMaxHealth
	}
	raw := (healthAfter - amount) / maxHealth * 100
	if !isFinite(raw) {
		return 0, false, ErrNonFinite
	}
	switch {
	case raw < 0:
		return 0, true, nil
	case raw > 100:
		return 100, true, nil
	}
	return raw, false, nil
}

// Multiplier returns 1 + (masteryPercent/100) * (1 - preHealPercent/100).
// It is exactly 1 when masteryPercent is 0.
func Multiplier(masteryPercent, preHealPercent float64) float64 {
	if masteryPercent == 0 {
		return 1
	}
	missing := 1 - preHealPercent/100
	return 1 + masteryPercent/100*missing
}

// BaseHeal removes the mastery bonus from amount.
func BaseHeal(amount, multiplier float64) float64 {
	return Round(amount / multiplier)
}

// NonMasteryOverheal is the part of overheal produced by the mastery
// amplification rather than by the base heal.
func NonMasteryOverheal(overheal, multiplier float64) float64 {
	return overheal - overheal/multiplier
}

// MasteryHealingPercent is the instantaneous bonus, in percent, a heal
// receives at the given pre-heal health.
func MasteryHealingPercent(masteryPercent, preHealPercent float64) float64 {
	return masteryPercent * (100 - preHealPercent) / 100
}

// RatingToPercent converts a mastery rating to the 0-100 percentage scale.
func RatingToPercent(rating, basePercent, ratingPerPercent float64) float64 {
	return basePercent + rating/ratingPerPercent
}

// Attribute decomposes one heal at the given mastery percentage.
//
// Contracts: 0 <= AttributedOverhealAdjusted <= Attributed, BaseHeal <= Amount
// for non-negative mastery, and everything collapses to zero attribution when
// masteryPercent is 0 or the target was at full health.
func Attribute(h Heal, masteryPercent float64) (Attribution, error) {
	for _, v := range []float64{h.Amount, h.Overheal, h.MaxHealth, h.HealthAfter, masteryPercent} {
		if !isFinite(v) {
			return Attribution{}, ErrNonFinite
		}
	}

	pct, clamped, err := PreHealHealthPercent(h.Amount, h.MaxHealth, h.HealthAfter)
	if err != nil {
		return Attribution{}, err
	}

	mult := Multiplier(masteryPercent, pct)
	if !isFinite(mult) || mult <= 0 {
		return Attribution{}, ErrNonFinite
	}

	base := BaseHeal(h.Amount, mult)
	attributed := Round(h.Amount - base)
	adjusted := Round(math.Max(attributed-NonMasteryOverheal(h.Overheal, mult), 0))
	// Negative overheal from a malformed log must not lift adjusted above attributed.
	adjusted = math.Min(adjusted, math.Max(attributed, 0))

	return Attribution{
		PreHealHealthPercent:       pct,
		Clamped:                    clamped,
		Multiplier:                 mult,
		BaseHeal:                   base,
		Attributed:                 attributed,
		AttributedOverhealAdjusted: adjusted,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
