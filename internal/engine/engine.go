package engine

import (
	"errors"
	"log/slog"
	"math"

	"github.com/roach88/masterylens/internal/catalog"
	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/mastery"
)

// Mastery constants for the tracked specialization.
const (
	DefaultBaseMasteryPercent = 21.0
	DefaultRatingPerPercent   = 133.33
)

// State is the engine lifecycle position.
type State int

const (
	StateInitialized State = iota
	StateRunning
	StateFinalized
)

// String returns a lowercase state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	default:
		return "initialized"
	}
}

// Actor is the tracked healer. The mastery rating is assumed constant for the
// whole fight.
type Actor struct {
	ID                 combatlog.ActorID
	MasteryRating      float64
	BaseMasteryPercent float64
	RatingPerPercent   float64
}

// NewActor returns an actor with the default mastery constants.
func NewActor(id combatlog.ActorID, rating float64) Actor {
	return Actor{
		ID:                 id,
		MasteryRating:      rating,
		BaseMasteryPercent: DefaultBaseMasteryPercent,
		RatingPerPercent:   DefaultRatingPerPercent,
	}
}

// MasteryPercent returns the actor's mastery on the 0-100 scale.
func (a Actor) MasteryPercent() float64 {
	return mastery.RatingToPercent(a.MasteryRating, a.BaseMasteryPercent, a.RatingPerPercent)
}

// BuffState exposes which catalog buffs are active on the tracked actor.
type BuffState interface {
	Active(id combatlog.SpellID) bool
}

// MasteryPercentFunc computes the mastery percentage applied to the heal
// being dispatched. It is the seam for buff-dependent mastery; the default
// ignores buffs and returns the actor's constant percentage.
type MasteryPercentFunc func(buffs BuffState) float64

// ConstantMastery returns a MasteryPercentFunc that always yields pct.
func ConstantMastery(pct float64) MasteryPercentFunc {
	return func(BuffState) float64 { return pct }
}

// CombatantSnapshot is the tracked actor's combatantinfo data, if seen.
type CombatantSnapshot struct {
	Seq           int64
	Timestamp     int64
	MasteryRating *int64
}

// Stats counts dispatched events by outcome.
type Stats struct {
	Seen           int `json:"seen"`
	Ignored        int `json:"ignored"`
	Heals          int `json:"heals"`
	Absorbs        int `json:"absorbs"`
	BuffChanges    int `json:"buff_changes"`
	CombatantInfos int `json:"combatant_infos"`
}

// spellAccumulator holds totals for one mastery-boosted spell.
type spellAccumulator struct {
	direct           float64
	mastery          float64
	masteryAdjusted  float64
	heals            int
	measured         int // heals with a usable pre-heal health
	healthPercentSum float64
	bonusPercentSum  float64
}

// indirectAccumulator holds totals for one indirectly boosted spell.
type indirectAccumulator struct {
	direct float64
}

// totals are the fight-wide accumulators.
type totals struct {
	healing   float64 // all effective healing
	noMastery float64 // base-heal equivalent of everything not indirect
	indirect  float64 // indirectly boosted spells, excluded from ratios
}

// Engine attributes one actor's healing to mastery.
//
// INVARIANTS:
//   - every accumulator exists from construction; none are created mid-fight
//   - each heal's effective amount lands in exactly one of: a boosted spell's
//     direct total, an indirect spell's direct total, or the no-mastery total
//   - Dispatch and Summarize are called from one goroutine
type Engine struct {
	actor          Actor
	catalog        *catalog.Catalog
	masteryPercent MasteryPercentFunc
	logger         *slog.Logger
	clock          *Clock
	state          State

	spells   map[combatlog.SpellID]*spellAccumulator
	indirect map[combatlog.SpellID]*indirectAccumulator
	buffs    map[combatlog.SpellID]bool
	totals   totals

	diagnostics []Diagnostic
	stats       Stats
	combatant   *CombatantSnapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithMasteryPercentFunc replaces the constant-mastery strategy.
func WithMasteryPercentFunc(fn MasteryPercentFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.masteryPercent = fn
		}
	}
}

// WithLogger sets the logger used for diagnostics. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the sequence clock, e.g. NewClockAt to resume numbering.
func WithClock(clock *Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New creates an engine for actor using cat. All accumulators start at zero
// and all buffs inactive.
func New(actor Actor, cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if actor.ID <= 0 {
		return nil, newConfigError(ErrCodeInvalidActor, "tracked actor id %d is not a valid combatant id", actor.ID)
	}
	if cat == nil {
		return nil, newConfigError(ErrCodeMissingCatalog, "spell catalog is required")
	}
	if !(actor.RatingPerPercent > 0) || math.IsInf(actor.RatingPerPercent, 0) {
		return nil, newConfigError(ErrCodeInvalidMastery, "rating per percent must be positive, got %v", actor.RatingPerPercent)
	}
	pct := actor.MasteryPercent()
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 {
		return nil, newConfigError(ErrCodeInvalidMastery, "mastery percent must be finite and non-negative, got %v", pct)
	}

	e := &Engine{
		actor:          actor,
		catalog:        cat,
		masteryPercent: ConstantMastery(pct),
		logger:         slog.Default(),
		clock:          NewClock(),
		state:          StateInitialized,
		spells:         make(map[combatlog.SpellID]*spellAccumulator),
		indirect:       make(map[combatlog.SpellID]*indirectAccumulator),
		buffs:          make(map[combatlog.SpellID]bool),
	}
	for _, entry := range cat.Boosted() {
		e.spells[entry.ID] = &spellAccumulator{}
	}
	for _, entry := range cat.Indirect() {
		e.indirect[entry.ID] = &indirectAccumulator{}
	}
	for _, entry := range cat.Buffs() {
		e.buffs[entry.ID] = false
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Actor returns the tracked actor.
func (e *Engine) Actor() Actor {
	return e.actor
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Seq returns the seq of the last dispatched event. Safe from any goroutine.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// Stats returns dispatch counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Diagnostics returns the recorded per-event problems in dispatch order.
func (e *Engine) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), e.diagnostics...)
}

// CombatantInfo returns the tracked actor's combatantinfo snapshot.
func (e *Engine) CombatantInfo() (CombatantSnapshot, bool) {
	if e.combatant == nil {
		return CombatantSnapshot{}, false
	}
	return *e.combatant, true
}

// Active reports whether a catalog buff is currently applied to the actor.
// Implements BuffState.
func (e *Engine) Active(id combatlog.SpellID) bool {
	return e.buffs[id]
}

// DispatchAll dispatches events in slice order.
func (e *Engine) DispatchAll(events []combatlog.Event) {
	for _, ev := range events {
		e.Dispatch(ev)
	}
}

// Dispatch processes one event. It never fails: data problems become
// Diagnostics.
func (e *Engine) Dispatch(ev combatlog.Event) {
	seq := e.clock.Next()
	e.stats.Seen++

	if e.state == StateFinalized {
		e.diagnose(seq, ev, DiagDispatchAfterSummary, "event dispatched after summarize; re-run summarize")
	}
	e.state = StateRunning

	// combatantinfo is reported with the combatant as source, for every
	// player in the fight.
	if ev.Type == combatlog.TypeCombatantInfo {
		e.stats.CombatantInfos++
		e.combatantInfo(seq, ev)
		return
	}

	if ev.SourceID != e.actor.ID {
		e.stats.Ignored++
		return
	}

	switch ev.Type {
	case combatlog.TypeApplyBuff:
		e.setBuff(ev, true)
	case combatlog.TypeRemoveBuff:
		e.setBuff(ev, false)
	case combatlog.TypeHeal:
		e.stats.Heals++
		e.heal(seq, ev)
	case combatlog.TypeAbsorbed:
		e.stats.Absorbs++
		e.absorbed(seq, ev)
	default:
		e.stats.Ignored++
	}
}

func (e *Engine) combatantInfo(seq int64, ev combatlog.Event) {
	if ev.SourceID != e.actor.ID {
		return
	}
	e.combatant = &CombatantSnapshot{
		Seq:           seq,
		Timestamp:     ev.Timestamp,
		MasteryRating: ev.Mastery,
	}
	e.logger.Debug("combatant info",
		"seq", seq,
		"actor", ev.SourceID,
		"mastery_rating", ev.Mastery,
	)
}

func (e *Engine) setBuff(ev combatlog.Event, active bool) {
	if ev.TargetID != e.actor.ID {
		return
	}
	id := ev.SpellID()
	if !e.catalog.IsBuff(id) {
		return
	}
	e.stats.BuffChanges++
	e.buffs[id] = active
	e.logger.Debug("buff state changed",
		"buff_id", id,
		"name", e.catalog.BuffName(id),
		"active", active,
	)
}

func (e *Engine) heal(seq int64, ev combatlog.Event) {
	spellID := ev.SpellID()
	class := e.catalog.Classify(spellID)

	amount, ok := combatlog.Value(ev.Amount)
	if !ok {
		e.diagnose(seq, ev, DiagMissingField, "heal has no amount; event skipped")
		return
	}

	attr, attrOK := e.attribute(seq, ev, amount, class == catalog.ClassMasteryBoosted)

	// Absorbed healing is effective healing. It is added after the mastery
	// math ran on the unabsorbed amount, so its share counts toward mastery
	// healing in the fight totals.
	effective := float64(amount)
	if absorbed, ok := combatlog.Value(ev.Absorbed); ok {
		effective += float64(absorbed)
	}

	e.totals.healing += effective

	switch class {
	case catalog.ClassMasteryBoosted:
		acc := e.spells[spellID]
		acc.direct += effective
		acc.heals++
		if attrOK {
			acc.measured++
			acc.healthPercentSum += attr.PreHealHealthPercent
			acc.bonusPercentSum += mastery.MasteryHealingPercent(e.masteryPercent(e), attr.PreHealHealthPercent)
			acc.mastery += attr.Attributed
			acc.masteryAdjusted += attr.AttributedOverhealAdjusted
			e.totals.noMastery += attr.BaseHeal
		} else {
			// Attribution skipped: the heal counts as if mastery added nothing.
			e.totals.noMastery += float64(amount)
		}

	case catalog.ClassIndirect:
		e.indirect[spellID].direct += effective
		e.totals.indirect += effective

	default:
		e.totals.noMastery += effective
	}
}

// attribute runs the mastery math for a heal. Problems are only reported for
// boosted spells, where the result is used.
func (e *Engine) attribute(seq int64, ev combatlog.Event, amount int64, report bool) (mastery.Attribution, bool) {
	maxHP, hasMax := combatlog.Value(ev.MaxHitPoints)
	hp, hasHP := combatlog.Value(ev.HitPoints)
	if !hasMax || !hasHP {
		if report {
			e.diagnose(seq, ev, DiagMissingField, "heal lacks maxHitPoints or hitPoints; mastery attribution skipped")
		}
		return mastery.Attribution{}, false
	}
	overheal, _ := combatlog.Value(ev.Overheal)

	attr, err := mastery.Attribute(mastery.Heal{
		Amount:      float64(amount),
		Overheal:    float64(overheal),
		MaxHealth:   float64(maxHP),
		HealthAfter: float64(hp),
	}, e.masteryPercent(e))
	if err != nil {
		if report {
			code := DiagNonFinite
			if errors.Is(err, mastery.ErrZeroMaxHealth) {
				code = DiagZeroMaxHealth
			}
			e.diagnose(seq, ev, code, "mastery attribution skipped: "+err.Error())
		}
		return mastery.Attribution{}, false
	}

	if attr.Clamped && report {
		e.diagnose(seq, ev, DiagHealthOutOfRange, "pre-heal health outside 0-100%; clamped")
	}
	return attr, true
}

func (e *Engine) absorbed(seq int64, ev combatlog.Event) {
	amount, ok := combatlog.Value(ev.Amount)
	if !ok {
		e.diagnose(seq, ev, DiagMissingField, "absorbed event has no amount; event skipped")
		return
	}
	e.totals.healing += float64(amount)
	e.totals.noMastery += float64(amount)
}

func (e *Engine) diagnose(seq int64, ev combatlog.Event, code DiagnosticCode, msg string) {
	d := Diagnostic{
		Seq:       seq,
		Code:      code,
		Message:   msg,
		EventType: ev.Type,
		SpellID:   ev.SpellID(),
		Timestamp: ev.Timestamp,
	}
	e.diagnostics = append(e.diagnostics, d)
	e.logger.Warn("event diagnostic",
		"seq", d.Seq,
		"code", d.Code,
		"event_type", d.EventType,
		"spell_id", d.SpellID,
		"timestamp", d.Timestamp,
		"message", d.Message,
	)
}
