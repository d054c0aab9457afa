// Package testutil builds combat-log fixtures for tests.
package testutil

import "github.com/roach88/masterylens/internal/combatlog"

// HealSpec describes a heal fixture. Zero-valued optional fields are
// encoded as present zeros; use the With* helpers to drop fields.
type HealSpec struct {
	Timestamp int64
	Source    combatlog.ActorID
	Target    combatlog.ActorID
	Spell     combatlog.SpellID
	Amount    int64
	Overheal  int64
	Absorbed  int64 // omitted when zero
	MaxHP     int64
	HP        int64
}

// Heal builds a heal event.
func Heal(s HealSpec) combatlog.Event {
	ev := combatlog.Event{
		Timestamp:    s.Timestamp,
		Type:         combatlog.TypeHeal,
		SourceID:     s.Source,
		TargetID:     s.Target,
		Ability:      &combatlog.Ability{GUID: s.Spell},
		Amount:       combatlog.Int(s.Amount),
		Overheal:     combatlog.Int(s.Overheal),
		MaxHitPoints: combatlog.Int(s.MaxHP),
		HitPoints:    combatlog.Int(s.HP),
	}
	if s.Absorbed != 0 {
		ev.Absorbed = combatlog.Int(s.Absorbed)
	}
	return ev
}

// SimpleHeal is a heal by source with no overheal on a target going from
// hpBefore to hpBefore+amount out of maxHP.
func SimpleHeal(source combatlog.ActorID, spell combatlog.SpellID, amount, hpBefore, maxHP int64) combatlog.Event {
	return Heal(HealSpec{
		Source: source,
		Target: source + 100,
		Spell:  spell,
		Amount: amount,
		MaxHP:  maxHP,
		HP:     hpBefore + amount,
	})
}

// Absorbed builds a shield absorption event.
func Absorbed(source combatlog.ActorID, spell combatlog.SpellID, amount int64) combatlog.Event {
	return combatlog.Event{
		Type:     combatlog.TypeAbsorbed,
		SourceID: source,
		TargetID: source + 100,
		Ability:  &combatlog.Ability{GUID: spell},
		Amount:   combatlog.Int(amount),
	}
}

// ApplyBuff builds an applybuff event from source onto target.
func ApplyBuff(source, target combatlog.ActorID, buff combatlog.SpellID) combatlog.Event {
	return buffEvent(combatlog.TypeApplyBuff, source, target, buff)
}

// RemoveBuff builds a removebuff event from source onto target.
func RemoveBuff(source, target combatlog.ActorID, buff combatlog.SpellID) combatlog.Event {
	return buffEvent(combatlog.TypeRemoveBuff, source, target, buff)
}

func buffEvent(typ combatlog.EventType, source, target combatlog.ActorID, buff combatlog.SpellID) combatlog.Event {
	return combatlog.Event{
		Type:     typ,
		SourceID: source,
		TargetID: target,
		Ability:  &combatlog.Ability{GUID: buff},
	}
}

// CombatantInfo builds a combatantinfo event reporting a mastery rating.
func CombatantInfo(actor combatlog.ActorID, rating int64) combatlog.Event {
	return combatlog.Event{
		Type:     combatlog.TypeCombatantInfo,
		SourceID: actor,
		Mastery:  combatlog.Int(rating),
	}
}

// WithoutHealth drops maxHitPoints and hitPoints from ev.
func WithoutHealth(ev combatlog.Event) combatlog.Event {
	ev.MaxHitPoints = nil
	ev.HitPoints = nil
	return ev
}

// WithoutAmount drops amount from ev.
func WithoutAmount(ev combatlog.Event) combatlog.Event {
	ev.Amount = nil
	return ev
}
