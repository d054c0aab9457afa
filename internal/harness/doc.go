// Package harness runs YAML attribution scenarios against the real engine.
//
// # Scenario Format
//
//	name: reference_heal
//	description: "What this scenario checks"
//	actor:
//	  id: 1
//	  rating: 0               # mastery rating
//	  base_percent: 21        # optional
//	  rating_per_percent: 133.33
//	catalog: catalog.yaml     # optional, relative to the scenario; built-in table if empty
//	events_file: fight.json   # optional, relative to the scenario
//	events:                   # inline events, appended after events_file
//	  - type: heal
//	    sourceID: 1
//	    targetID: 10
//	    ability: {guid: 1064}
//	    amount: 100
//	    maxHitPoints: 1000
//	    hitPoints: 500
//	expect:
//	  total_healing: 100
//	  total_mastery_healing: 11
//	  mastery_healing_percent: 11   # or "n/a"
//	  spell_order: [1064]
//	  spells:
//	    - spell_id: 1064
//	      mastery_amount: 11
//	  diagnostic_codes: []
//
// Every expect field is optional; only the fields given are checked.
// Amounts and percentages compare within tolerance (default 0.01).
//
// # Golden Snapshots
//
// RunWithGolden stores a canonical JSON snapshot of the report in
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// Snapshots encode amounts as integers and percentages as fixed four-decimal
// strings, so they are byte-stable across platforms.
package harness
