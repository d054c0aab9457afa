package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/masterylens/internal/combatlog"
)

func TestHeal_AbsorbedOmittedWhenZero(t *testing.T) {
	ev := Heal(HealSpec{Source: 1, Target: 2, Spell: 1064, Amount: 100, MaxHP: 1000, HP: 500})
	assert.Nil(t, ev.Absorbed)
	assert.Equal(t, combatlog.SpellID(1064), ev.SpellID())

	ev = Heal(HealSpec{Source: 1, Spell: 1064, Amount: 100, Absorbed: 20})
	v, ok := combatlog.Value(ev.Absorbed)
	assert.True(t, ok)
	assert.Equal(t, int64(20), v)
}

func TestSimpleHeal_HealthAfter(t *testing.T) {
	ev := SimpleHeal(7, 1064, 100, 400, 1000)
	assert.Equal(t, int64(500), *ev.HitPoints)
	assert.Equal(t, int64(0), *ev.Overheal)
}

func TestFixedIDGenerator(t *testing.T) {
	gen := NewFixedIDGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Equal(t, "b", gen.Generate())

	auto := NewFixedIDGenerator()
	assert.Equal(t, "import-1", auto.Generate())
	assert.Equal(t, "import-2", auto.Generate())
}
