package engine

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/masterylens/internal/catalog"
	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/testutil"
)

const (
	healer      combatlog.ActorID = 1
	otherHealer combatlog.ActorID = 2

	chainHeal   combatlog.SpellID = 1064
	riptide     combatlog.SpellID = 61295
	cloudburst  combatlog.SpellID = 157503
	ascendance  combatlog.SpellID = 114052
	unknownHeal combatlog.SpellID = 999999
)

// newTestEngine tracks healer at exactly 21% mastery with the default catalog.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))}, opts...)
	e, err := New(NewActor(healer, 0), catalog.Default(), opts...)
	require.NoError(t, err)
	return e
}

// referenceHeal is 100 healing onto a target at 40% health out of 1000.
func referenceHeal(overheal int64) combatlog.Event {
	return testutil.Heal(testutil.HealSpec{
		Source:   healer,
		Target:   10,
		Spell:    chainHeal,
		Amount:   100,
		Overheal: overheal,
		MaxHP:    1000,
		HP:       500,
	})
}

func TestNew_Validation(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name  string
		actor Actor
		cat   *catalog.Catalog
		code  ConfigErrorCode
	}{
		{"zero actor", NewActor(0, 100), cat, ErrCodeInvalidActor},
		{"negative actor", NewActor(-5, 100), cat, ErrCodeInvalidActor},
		{"nil catalog", NewActor(1, 100), nil, ErrCodeMissingCatalog},
		{"zero rating per percent", Actor{ID: 1, BaseMasteryPercent: 21}, cat, ErrCodeInvalidMastery},
		{"nan rating", Actor{ID: 1, MasteryRating: math.NaN(), BaseMasteryPercent: 21, RatingPerPercent: 133.33}, cat, ErrCodeInvalidMastery},
		{"negative mastery", Actor{ID: 1, MasteryRating: -10000, BaseMasteryPercent: 21, RatingPerPercent: 133.33}, cat, ErrCodeInvalidMastery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.actor, tt.cat)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestNew_InitialState(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, StateInitialized, e.State())
	assert.Equal(t, int64(0), e.Seq())
	assert.Empty(t, e.Diagnostics())
	for _, b := range catalog.Default().Buffs() {
		assert.False(t, e.Active(b.ID), "buff %d should start inactive", b.ID)
	}
}

func TestActor_MasteryPercent(t *testing.T) {
	assert.InDelta(t, 21.0, NewActor(1, 0).MasteryPercent(), 1e-9)
	assert.InDelta(t, 31.0, NewActor(1, 1333.3).MasteryPercent(), 1e-9)
}

func TestDispatch_ReferenceHeal(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(referenceHeal(0))

	r := e.Summarize()
	assert.Equal(t, 100.0, r.TotalHealing)
	assert.Equal(t, 11.0, r.TotalMasteryHealing)
	assert.Equal(t, 11.0, r.TotalMasteryHealingOverhealAdjusted)
	require.True(t, r.MasteryHealingPercent.Defined)
	assert.InDelta(t, 11.0, r.MasteryHealingPercent.Value, 1e-9)

	require.Len(t, r.Spells, 1)
	s := r.Spells[0]
	assert.Equal(t, chainHeal, s.SpellID)
	assert.Equal(t, "Chain Heal", s.Name)
	assert.Equal(t, 100.0, s.DirectAmount)
	assert.Equal(t, 11.0, s.MasteryAmount)
	assert.Equal(t, 11.0, s.MasteryAmountOverhealAdjusted)
	assert.Equal(t, 1, s.HealCount)
	assert.InDelta(t, 40.0, s.AvgTargetHealthPercent.Value, 1e-9)
	assert.InDelta(t, 12.6, s.AvgMasteryBonusPercent.Value, 1e-9)
	assert.InDelta(t, 100.0, s.DirectPercent.Value, 1e-9)
	assert.InDelta(t, 11.0, s.MasteryPercent.Value, 1e-9)
}

func TestDispatch_ReferenceHealWithOverheal(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(referenceHeal(50))

	r := e.Summarize()
	require.Len(t, r.Spells, 1)
	assert.Equal(t, 11.0, r.Spells[0].MasteryAmount)
	assert.Equal(t, 5.0, r.Spells[0].MasteryAmountOverhealAdjusted)
	assert.Equal(t, 11.0, r.TotalMasteryHealing)
	assert.Equal(t, 5.0, r.TotalMasteryHealingOverhealAdjusted)
}

func TestDispatch_ZeroMastery(t *testing.T) {
	e, err := New(Actor{ID: healer, RatingPerPercent: DefaultRatingPerPercent}, catalog.Default())
	require.NoError(t, err)

	e.Dispatch(referenceHeal(50))
	r := e.Summarize()

	assert.Equal(t, 0.0, r.TotalMasteryHealing)
	assert.Equal(t, 0.0, r.Spells[0].MasteryAmount)
	assert.Equal(t, 0.0, r.Spells[0].MasteryAmountOverhealAdjusted)
}

func TestDispatch_UnknownSpell(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.SimpleHeal(healer, unknownHeal, 250, 100, 1000))

	r := e.Summarize()
	assert.Equal(t, 250.0, r.TotalHealing)
	assert.Equal(t, 0.0, r.TotalMasteryHealing)
	assert.Empty(t, r.Spells)
	assert.Empty(t, r.Indirect)
	assert.InDelta(t, 0.0, r.MasteryHealingPercent.Value, 1e-9)
	assert.True(t, r.MasteryHealingPercent.Defined)
}

func TestDispatch_IndirectSpell(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.SimpleHeal(healer, cloudburst, 300, 100, 1000))
	e.Dispatch(referenceHeal(0))

	r := e.Summarize()
	assert.Equal(t, 400.0, r.TotalHealing)
	assert.Equal(t, 300.0, r.TotalIndirectHealing)
	assert.Equal(t, 11.0, r.TotalMasteryHealing)
	assert.InDelta(t, 11.0, r.MasteryHealingPercent.Value, 1e-9, "indirect healing is excluded from the denominator")

	require.Len(t, r.Indirect, 1)
	assert.Equal(t, cloudburst, r.Indirect[0].SpellID)
	assert.Equal(t, "Cloudburst", r.Indirect[0].Name)
	assert.Equal(t, 300.0, r.Indirect[0].DirectAmount)

	require.Len(t, r.Spells, 1)
	assert.InDelta(t, 100.0, r.Spells[0].DirectPercent.Value, 1e-9)
}

func TestDispatch_OnlyIndirectHealingLeavesRatiosUndefined(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.SimpleHeal(healer, cloudburst, 300, 100, 1000))

	r := e.Summarize()
	assert.False(t, r.MasteryHealingPercent.Defined)
}

func TestDispatch_HealAbsorbedFieldCountsAsEffective(t *testing.T) {
	e := newTestEngine(t)
	ev := referenceHeal(0)
	ev.Absorbed = combatlog.Int(20)
	e.Dispatch(ev)

	r := e.Summarize()
	require.Len(t, r.Spells, 1)
	assert.Equal(t, 120.0, r.Spells[0].DirectAmount)
	assert.Equal(t, 11.0, r.Spells[0].MasteryAmount, "mastery math runs on the unabsorbed amount")
	assert.Equal(t, 120.0, r.TotalHealing)
	// The absorbed share is not removed from the no-mastery base, so it
	// shows up as mastery healing in the fight total.
	assert.Equal(t, 31.0, r.TotalMasteryHealing)
}

func TestDispatch_AbsorbedEvent(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.Absorbed(healer, 974, 50))
	e.Dispatch(referenceHeal(0))

	r := e.Summarize()
	assert.Equal(t, 150.0, r.TotalHealing)
	assert.Equal(t, 11.0, r.TotalMasteryHealing)
	assert.Len(t, r.Spells, 1)
	assert.Equal(t, 1, e.Stats().Absorbs)
}

func TestDispatch_IgnoresOtherSources(t *testing.T) {
	e := newTestEngine(t)
	ev := referenceHeal(0)
	ev.SourceID = otherHealer
	e.Dispatch(ev)
	e.Dispatch(testutil.Absorbed(otherHealer, 974, 50))
	e.Dispatch(testutil.ApplyBuff(otherHealer, healer, ascendance))

	r := e.Summarize()
	assert.Equal(t, 0.0, r.TotalHealing)
	assert.Empty(t, r.Spells)
	assert.False(t, e.Active(ascendance))
	assert.Equal(t, 3, e.Stats().Ignored)
	assert.Equal(t, 3, e.Stats().Seen)
}

func TestDispatch_IgnoresUnknownEventTypes(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(combatlog.Event{Type: "damage", SourceID: healer, Amount: combatlog.Int(500)})

	assert.Equal(t, 0.0, e.Summarize().TotalHealing)
	assert.Equal(t, 1, e.Stats().Ignored)
	assert.Empty(t, e.Diagnostics())
}

func TestDispatch_CombatantInfo(t *testing.T) {
	e := newTestEngine(t)

	e.Dispatch(testutil.CombatantInfo(otherHealer, 900))
	_, ok := e.CombatantInfo()
	assert.False(t, ok, "snapshot only stored for the tracked actor")

	e.Dispatch(testutil.CombatantInfo(healer, 1200))
	snap, ok := e.CombatantInfo()
	require.True(t, ok)
	assert.Equal(t, int64(2), snap.Seq)
	require.NotNil(t, snap.MasteryRating)
	assert.Equal(t, int64(1200), *snap.MasteryRating)

	// The snapshot does not change attribution.
	e.Dispatch(referenceHeal(0))
	assert.Equal(t, 11.0, e.Summarize().TotalMasteryHealing)
	assert.Equal(t, 2, e.Stats().CombatantInfos)
}

func TestDispatch_Buffs(t *testing.T) {
	e := newTestEngine(t)

	e.Dispatch(testutil.ApplyBuff(healer, healer, ascendance))
	assert.True(t, e.Active(ascendance))

	e.Dispatch(testutil.ApplyBuff(healer, 50, 157153))
	assert.False(t, e.Active(157153), "buffs on other targets are ignored")

	e.Dispatch(testutil.ApplyBuff(healer, healer, 12345))
	assert.False(t, e.Active(12345), "unknown buffs are ignored")

	r := e.Summarize()
	assert.Equal(t, []combatlog.SpellID{ascendance}, r.ActiveBuffs)

	e.Dispatch(testutil.RemoveBuff(healer, healer, ascendance))
	assert.False(t, e.Active(ascendance))
	assert.Equal(t, 2, e.Stats().BuffChanges)
}

func TestDispatch_BuffsDoNotChangeDefaultAttribution(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.ApplyBuff(healer, healer, ascendance))
	e.Dispatch(referenceHeal(0))

	assert.Equal(t, 11.0, e.Summarize().TotalMasteryHealing)
}

func TestDispatch_MasteryPercentFuncSeesBuffState(t *testing.T) {
	buffed := func(b BuffState) float64 {
		if b.Active(ascendance) {
			return 42
		}
		return 21
	}
	e := newTestEngine(t, WithMasteryPercentFunc(buffed))

	e.Dispatch(referenceHeal(0))
	e.Dispatch(testutil.ApplyBuff(healer, healer, ascendance))
	e.Dispatch(referenceHeal(0))

	r := e.Summarize()
	// 100/1.126 -> 89 base, 11 mastery; 100/1.252 -> 80 base, 20 mastery.
	require.Len(t, r.Spells, 1)
	assert.Equal(t, 31.0, r.Spells[0].MasteryAmount)
	assert.Equal(t, 31.0, r.TotalMasteryHealing)
}

func TestDispatch_Diagnostics(t *testing.T) {
	tests := []struct {
		name  string
		event combatlog.Event
		code  DiagnosticCode
	}{
		{"missing health", testutil.WithoutHealth(referenceHeal(0)), DiagMissingField},
		{"missing amount", testutil.WithoutAmount(referenceHeal(0)), DiagMissingField},
		{"zero max health", testutil.Heal(testutil.HealSpec{Source: healer, Spell: chainHeal, Amount: 100, HP: 100}), DiagZeroMaxHealth},
		{"health above max", testutil.Heal(testutil.HealSpec{Source: healer, Spell: chainHeal, Amount: 100, MaxHP: 1000, HP: 1200}), DiagHealthOutOfRange},
		{"absorb without amount", testutil.WithoutAmount(testutil.Absorbed(healer, 974, 1)), DiagMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.Dispatch(tt.event)

			diags := e.Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, int64(1), diags[0].Seq)
			assert.Equal(t, 1, e.Summarize().Diagnostics)
		})
	}
}

func TestDispatch_FailedAttributionCountsHealWithoutMastery(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.WithoutHealth(referenceHeal(0)))

	r := e.Summarize()
	assert.Equal(t, 100.0, r.TotalHealing)
	assert.Equal(t, 0.0, r.TotalMasteryHealing)
	require.Len(t, r.Spells, 1)
	assert.Equal(t, 1, r.Spells[0].HealCount)
	assert.False(t, r.Spells[0].AvgTargetHealthPercent.Defined)
}

func TestDispatch_MissingHealthOnUnboostedSpellIsSilent(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.WithoutHealth(testutil.SimpleHeal(healer, unknownHeal, 100, 0, 1000)))

	assert.Empty(t, e.Diagnostics())
	assert.Equal(t, 100.0, e.Summarize().TotalHealing)
}

func TestDispatch_ClampedHealStillAttributed(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(testutil.Heal(testutil.HealSpec{Source: healer, Spell: chainHeal, Amount: 100, MaxHP: 1000, HP: 1200}))

	r := e.Summarize()
	require.Len(t, r.Spells, 1)
	assert.Equal(t, 0.0, r.Spells[0].MasteryAmount, "full health means no mastery bonus")
	assert.InDelta(t, 100.0, r.Spells[0].AvgTargetHealthPercent.Value, 1e-9)
}

func TestDispatch_AfterSummarize(t *testing.T) {
	e := newTestEngine(t)
	e.Dispatch(referenceHeal(0))
	first := e.Summarize()
	assert.Equal(t, StateFinalized, e.State())

	e.Dispatch(referenceHeal(0))
	assert.Equal(t, StateRunning, e.State())

	diags := e.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, DiagDispatchAfterSummary, diags[0].Code)

	second := e.Summarize()
	assert.Equal(t, 2*first.TotalHealing, second.TotalHealing)
	assert.Equal(t, 22.0, second.TotalMasteryHealing)
}

func TestDispatch_CatalogMembershipInvariant(t *testing.T) {
	cat := catalog.Default()
	spells := []combatlog.SpellID{unknownHeal, 4242}
	for _, entry := range cat.Boosted() {
		spells = append(spells, entry.ID)
	}
	for _, entry := range cat.Indirect() {
		spells = append(spells, entry.ID)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		e := newTestEngine(t)
		spell := spells[rng.Intn(len(spells))]
		amount := int64(rng.Intn(5000) + 1)
		maxHP := int64(rng.Intn(100000) + 1000)
		hp := int64(rng.Intn(int(maxHP))) + 1

		e.Dispatch(testutil.Heal(testutil.HealSpec{
			Source: healer, Target: 9, Spell: spell,
			Amount: amount, Overheal: int64(rng.Intn(500)), MaxHP: maxHP, HP: hp,
		}))

		var direct, indirectDirect float64
		for _, acc := range e.spells {
			direct += acc.direct
		}
		for _, acc := range e.indirect {
			indirectDirect += acc.direct
		}

		switch cat.Classify(spell) {
		case catalog.ClassMasteryBoosted:
			assert.Equal(t, float64(amount), direct)
			assert.Zero(t, indirectDirect)
		case catalog.ClassIndirect:
			assert.Zero(t, direct)
			assert.Equal(t, float64(amount), indirectDirect)
			assert.Zero(t, e.totals.noMastery)
		default:
			assert.Zero(t, direct)
			assert.Zero(t, indirectDirect)
			assert.Equal(t, float64(amount), e.totals.noMastery)
		}
	}
}

func TestDispatchAll_PreservesOrder(t *testing.T) {
	buffed := func(b BuffState) float64 {
		if b.Active(ascendance) {
			return 42
		}
		return 21
	}
	heal := referenceHeal(0)

	inOrder := newTestEngine(t, WithMasteryPercentFunc(buffed))
	inOrder.DispatchAll([]combatlog.Event{heal, testutil.ApplyBuff(healer, healer, ascendance)})

	reordered := newTestEngine(t, WithMasteryPercentFunc(buffed))
	reordered.DispatchAll([]combatlog.Event{testutil.ApplyBuff(healer, healer, ascendance), heal})

	assert.Equal(t, 11.0, inOrder.Summarize().TotalMasteryHealing)
	assert.Equal(t, 20.0, reordered.Summarize().TotalMasteryHealing)
	assert.Equal(t, int64(2), inOrder.Seq())
}

func TestWithClock_ResumesSequence(t *testing.T) {
	e := newTestEngine(t, WithClock(NewClockAt(41)))
	e.Dispatch(testutil.WithoutHealth(referenceHeal(0)))

	require.Len(t, e.Diagnostics(), 1)
	assert.Equal(t, int64(42), e.Diagnostics()[0].Seq)
}

func TestDiagnostic_LoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	e.Dispatch(testutil.WithoutHealth(referenceHeal(0)))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=MISSING_FIELD")
	assert.Contains(t, buf.String(), "spell_id=1064")
}
