// Package catalog classifies spell IDs for mastery attribution.
//
// Every spell ID resolves to exactly one Class:
//   - ClassMasteryBoosted: observed heals are inflated by mastery and get
//     decomposed into base and attributed healing.
//   - ClassIndirect: heals that benefit from mastery through another
//     mechanism; tracked separately and never decomposed.
//   - ClassUnboosted: everything else.
//
// The classification is resolved once at construction into a single map, so
// lookups during dispatch are one map read.
//
// A catalog also lists the buff IDs whose active state the engine tracks, and
// display names for reporting. Catalogs are immutable after New.
package catalog

import (
	"github.com/roach88/masterylens/internal/combatlog"
)

// Class is the mastery relationship of a spell.
type Class int

const (
	ClassUnboosted Class = iota
	ClassMasteryBoosted
	ClassIndirect
)

// String returns the config spelling of the class.
func (c Class) String() string {
	switch c {
	case ClassMasteryBoosted:
		return "mastery_boosted"
	case ClassIndirect:
		return "indirectly_boosted"
	default:
		return "unboosted"
	}
}

// Entry is a catalog row.
type Entry struct {
	ID   combatlog.SpellID `json:"id" yaml:"id"`
	Name string            `json:"name,omitempty" yaml:"name,omitempty"`
}

// Catalog is the resolved classification table.
type Catalog struct {
	name     string
	classes  map[combatlog.SpellID]Class
	names    map[combatlog.SpellID]string
	boosted  []Entry
	indirect []Entry
	buffs    []Entry
	buffSet  map[combatlog.SpellID]struct{}
}

// New builds a catalog. Spell IDs must be unique across the boosted and
// indirect lists, and buff IDs unique among buffs. Buff IDs share no
// namespace with heals; a buff may reuse a heal's ID.
func New(name string, boosted, indirect, buffs []Entry) (*Catalog, error) {
	c := &Catalog{
		name:     name,
		classes:  make(map[combatlog.SpellID]Class, len(boosted)+len(indirect)),
		names:    make(map[combatlog.SpellID]string, len(boosted)+len(indirect)),
		boosted:  append([]Entry(nil), boosted...),
		indirect: append([]Entry(nil), indirect...),
		buffs:    append([]Entry(nil), buffs...),
		buffSet:  make(map[combatlog.SpellID]struct{}, len(buffs)),
	}

	add := func(e Entry, class Class) error {
		if e.ID <= 0 {
			return NewInvalidIDError(e.ID, class.String())
		}
		if prev, ok := c.classes[e.ID]; ok {
			return NewDuplicateSpellError(e.ID, prev, class)
		}
		c.classes[e.ID] = class
		if e.Name != "" {
			c.names[e.ID] = e.Name
		}
		return nil
	}

	for _, e := range boosted {
		if err := add(e, ClassMasteryBoosted); err != nil {
			return nil, err
		}
	}
	for _, e := range indirect {
		if err := add(e, ClassIndirect); err != nil {
			return nil, err
		}
	}
	for _, b := range buffs {
		if b.ID <= 0 {
			return nil, NewInvalidIDError(b.ID, "buffs")
		}
		if _, ok := c.buffSet[b.ID]; ok {
			return nil, NewDuplicateBuffError(b.ID)
		}
		c.buffSet[b.ID] = struct{}{}
	}

	return c, nil
}

// Name returns the catalog's label.
func (c *Catalog) Name() string {
	return c.name
}

// Classify returns the class of a spell. Unknown IDs are ClassUnboosted.
func (c *Catalog) Classify(id combatlog.SpellID) Class {
	return c.classes[id]
}

// IsBuff reports whether id is a tracked buff.
func (c *Catalog) IsBuff(id combatlog.SpellID) bool {
	_, ok := c.buffSet[id]
	return ok
}

// SpellName returns the display name for a spell, or "" if unnamed.
func (c *Catalog) SpellName(id combatlog.SpellID) string {
	return c.names[id]
}

// BuffName returns the display name for a buff, or "" if unnamed.
func (c *Catalog) BuffName(id combatlog.SpellID) string {
	for _, b := range c.buffs {
		if b.ID == id {
			return b.Name
		}
	}
	return ""
}

// Boosted returns the mastery-boosted entries in declaration order.
func (c *Catalog) Boosted() []Entry {
	return append([]Entry(nil), c.boosted...)
}

// Indirect returns the indirectly boosted entries in declaration order.
func (c *Catalog) Indirect() []Entry {
	return append([]Entry(nil), c.indirect...)
}

// Buffs returns the tracked buff entries in declaration order.
func (c *Catalog) Buffs() []Entry {
	return append([]Entry(nil), c.buffs...)
}
