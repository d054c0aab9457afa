package combatlog

// ActorID identifies a combatant within one report.
type ActorID int64

// SpellID is an ability GUID.
type SpellID int64

// EventType is the log event kind.
type EventType string

const (
	TypeCombatantInfo EventType = "combatantinfo"
	TypeApplyBuff     EventType = "applybuff"
	TypeRemoveBuff    EventType = "removebuff"
	TypeHeal          EventType = "heal"
	TypeAbsorbed      EventType = "absorbed"
)

// Ability describes the spell that produced an event.
type Ability struct {
	GUID SpellID `json:"guid"`
	Name string  `json:"name,omitempty"`
}

// Event is one combat-log line.
type Event struct {
	Timestamp int64     `json:"timestamp"`
	Type      EventType `json:"type"`
	SourceID  ActorID   `json:"sourceID"`
	TargetID  ActorID   `json:"targetID"`
	Fight     int64     `json:"fight,omitempty"`
	Ability   *Ability  `json:"ability,omitempty"`

	Amount       *int64 `json:"amount,omitempty"`
	Overheal     *int64 `json:"overheal,omitempty"`
	Absorbed     *int64 `json:"absorbed,omitempty"`
	MaxHitPoints *int64 `json:"maxHitPoints,omitempty"`
	HitPoints    *int64 `json:"hitPoints,omitempty"`

	// Mastery is the rating reported by combatantinfo events.
	Mastery *int64 `json:"mastery,omitempty"`
}

// SpellID returns the ability GUID, or 0 when the event has no ability.
func (e Event) SpellID() SpellID {
	if e.Ability == nil {
		return 0
	}
	return e.Ability.GUID
}

// Int returns a pointer to v, for building events in code.
func Int(v int64) *int64 {
	return &v
}

// Value dereferences an optional field, reporting whether it was present.
func Value(p *int64) (int64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
