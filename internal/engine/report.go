package engine

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/roach88/masterylens/internal/combatlog"
)

// Ratio is a percentage that may be undefined because its denominator was
// zero. Undefined ratios encode as JSON null and render as "n/a".
type Ratio struct {
	Value   float64
	Defined bool
}

// Percent returns num/den*100, undefined when den is zero.
func Percent(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	v := num / den * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}
	}
	return Ratio{Value: v, Defined: true}
}

// DefinedRatio returns a defined ratio with value v.
func DefinedRatio(v float64) Ratio {
	return Ratio{Value: v, Defined: true}
}

// String formats the ratio with full precision, or "n/a".
func (r Ratio) String() string {
	if !r.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Ratio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ratio{Value: v, Defined: true}
	return nil
}

// SpellReport is one mastery-boosted spell's contribution.
type SpellReport struct {
	SpellID                       combatlog.SpellID `json:"spell_id"`
	Name                          string            `json:"name,omitempty"`
	DirectAmount                  float64           `json:"direct_amount"`
	DirectPercent                 Ratio             `json:"direct_percent"`
	MasteryAmount                 float64           `json:"mastery_amount"`
	MasteryAmountOverhealAdjusted float64           `json:"mastery_amount_overheal_adjusted"`
	MasteryPercent                Ratio             `json:"mastery_percent"`
	AvgTargetHealthPercent        Ratio             `json:"avg_target_health_percent"`
	AvgMasteryBonusPercent        Ratio             `json:"avg_mastery_bonus_percent"`
	HealCount                     int               `json:"heal_count"`
}

// IndirectReport is one indirectly boosted spell's healing. Indirect healing
// is excluded from every mastery ratio.
type IndirectReport struct {
	SpellID      combatlog.SpellID `json:"spell_id"`
	Name         string            `json:"name,omitempty"`
	DirectAmount float64           `json:"direct_amount"`
}

// Report is the immutable result of Summarize.
type Report struct {
	ActorID        combatlog.ActorID `json:"actor_id"`
	MasteryPercent float64           `json:"mastery_percent"`

	TotalHealing                        float64 `json:"total_healing"`
	TotalIndirectHealing                float64 `json:"total_indirect_healing"`
	TotalMasteryHealing                 float64 `json:"total_mastery_healing"`
	TotalMasteryHealingOverhealAdjusted float64 `json:"total_mastery_healing_overheal_adjusted"`
	MasteryHealingPercent               Ratio   `json:"mastery_healing_percent"`

	Spells      []SpellReport       `json:"spells"`
	Indirect    []IndirectReport    `json:"indirect"`
	ActiveBuffs []combatlog.SpellID `json:"active_buffs"`
	Diagnostics int                 `json:"diagnostics"`
}

// Summarize builds a report from the current accumulators. It may be called
// after any prefix of the stream; repeated calls with no Dispatch in between
// return identical reports.
func (e *Engine) Summarize() Report {
	e.state = StateFinalized

	total := e.totals.healing
	indirect := e.totals.indirect
	denom := total - indirect

	report := Report{
		ActorID:              e.actor.ID,
		MasteryPercent:       e.masteryPercent(e),
		TotalHealing:         total,
		TotalIndirectHealing: indirect,
		TotalMasteryHealing:  total - e.totals.noMastery - indirect,
		Spells:               []SpellReport{},
		Indirect:             []IndirectReport{},
		ActiveBuffs:          []combatlog.SpellID{},
		Diagnostics:          len(e.diagnostics),
	}
	report.MasteryHealingPercent = Percent(report.TotalMasteryHealing, denom)

	for id, acc := range e.spells {
		if acc.heals == 0 {
			continue
		}
		spell := SpellReport{
			SpellID:                       id,
			Name:                          e.catalog.SpellName(id),
			DirectAmount:                  acc.direct,
			DirectPercent:                 Percent(acc.direct, denom),
			MasteryAmount:                 acc.mastery,
			MasteryAmountOverhealAdjusted: acc.masteryAdjusted,
			MasteryPercent:                Percent(acc.mastery, denom),
			HealCount:                     acc.heals,
		}
		if acc.measured > 0 {
			spell.AvgTargetHealthPercent = DefinedRatio(acc.healthPercentSum / float64(acc.measured))
			spell.AvgMasteryBonusPercent = DefinedRatio(acc.bonusPercentSum / float64(acc.measured))
		}
		report.Spells = append(report.Spells, spell)
	}
	sort.Slice(report.Spells, func(i, j int) bool {
		a, b := report.Spells[i], report.Spells[j]
		if a.DirectAmount != b.DirectAmount {
			return a.DirectAmount > b.DirectAmount
		}
		return a.SpellID < b.SpellID
	})

	// Sums run in report order so repeated calls are bit-identical.
	var overhealLoss float64
	for _, spell := range report.Spells {
		overhealLoss += spell.MasteryAmount - spell.MasteryAmountOverhealAdjusted
	}
	report.TotalMasteryHealingOverhealAdjusted = math.Max(report.TotalMasteryHealing-overhealLoss, 0)

	for id, acc := range e.indirect {
		if acc.direct == 0 {
			continue
		}
		report.Indirect = append(report.Indirect, IndirectReport{
			SpellID:      id,
			Name:         e.catalog.SpellName(id),
			DirectAmount: acc.direct,
		})
	}
	sort.Slice(report.Indirect, func(i, j int) bool {
		a, b := report.Indirect[i], report.Indirect[j]
		if a.DirectAmount != b.DirectAmount {
			return a.DirectAmount > b.DirectAmount
		}
		return a.SpellID < b.SpellID
	})

	for id, active := range e.buffs {
		if active {
			report.ActiveBuffs = append(report.ActiveBuffs, id)
		}
	}
	sort.Slice(report.ActiveBuffs, func(i, j int) bool {
		return report.ActiveBuffs[i] < report.ActiveBuffs[j]
	})

	e.logger.Debug("summarized",
		"seq", e.clock.Current(),
		"total_healing", report.TotalHealing,
		"mastery_healing", report.TotalMasteryHealing,
		"spells", len(report.Spells),
	)

	return report
}
