package catalog

// RestorationShaman is the built-in table for Restoration Shaman healers.
//
// Queen's Decree's 10% max-health buff is not attributed to Gift of the
// Queen; its mastery effect lands on whichever heal follows it.
var RestorationShaman = File{
	Name: "restoration-shaman",
	MasteryBoosted: []Entry{
		{ID: 1064, Name: "Chain Heal"},
		{ID: 61295, Name: "Riptide"},
		{ID: 209069, Name: "Tidal Totem"},
		{ID: 52042, Name: "Healing Stream Totem"},
		{ID: 207360, Name: "Queen's Decree"},
		{ID: 77472, Name: "Healing Wave"},
		{ID: 114942, Name: "Healing Tide Totem"},
		{ID: 8004, Name: "Healing Surge"},
		{ID: 73921, Name: "Healing Rain"},
		{ID: 207778, Name: "Gift of the Queen"},
		{ID: 73685, Name: "Unleash Life"},
		{ID: 197995, Name: "Wellspring"},
	},
	IndirectlyBoosted: []Entry{
		{ID: 157503, Name: "Cloudburst"},
		{ID: 114083, Name: "Restorative Mists"},
		{ID: 114911, Name: "Ancestral Guidance"},
	},
	Buffs: []Entry{
		{ID: 157153, Name: "Cloudburst"},
		{ID: 114052, Name: "Ascendance"},
		{ID: 108281, Name: "Ancestral Guidance"},
	},
}

// Default returns the built-in Restoration Shaman catalog.
func Default() *Catalog {
	c, err := RestorationShaman.Build()
	if err != nil {
		panic("catalog: built-in table is invalid: " + err.Error())
	}
	return c
}
