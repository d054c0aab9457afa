package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/masterylens/internal/combatlog"
)

// Scenario is one attribution test case.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	Actor ActorSpec `yaml:"actor"`

	// Catalog is a YAML or CUE catalog path. Empty uses the built-in table.
	Catalog string `yaml:"catalog,omitempty"`

	// EventsFile is a JSON event stream loaded before inline Events.
	EventsFile string `yaml:"events_file,omitempty"`

	// Events are inline combat-log events using the log's field names.
	Events []map[string]any `yaml:"events,omitempty"`

	Expect Expectations `yaml:"expect"`

	// dir is the scenario file's directory, for resolving relative paths.
	dir string
}

// ActorSpec describes the tracked healer.
type ActorSpec struct {
	ID               int64    `yaml:"id"`
	Rating           float64  `yaml:"rating"`
	BasePercent      *float64 `yaml:"base_percent,omitempty"`
	RatingPerPercent *float64 `yaml:"rating_per_percent,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected to catch typos such as "expects:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScenario parses scenario YAML. Relative paths resolve against the
// working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Actor.ID <= 0 {
		return fmt.Errorf("actor.id is required and must be positive")
	}

	for i, ev := range s.Events {
		if _, ok := ev["type"]; !ok {
			return fmt.Errorf("events[%d]: type is required", i)
		}
	}

	for i, sp := range s.Expect.Spells {
		if sp.SpellID == 0 {
			return fmt.Errorf("expect.spells[%d]: spell_id is required", i)
		}
	}
	return nil
}

// resolve joins a scenario-relative path.
func (s *Scenario) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}

// LoadEvents returns the scenario's event stream: events_file first, then
// inline events, in order.
func (s *Scenario) LoadEvents() ([]combatlog.Event, error) {
	events := []combatlog.Event{}

	if s.EventsFile != "" {
		fromFile, err := combatlog.DecodeFile(s.resolve(s.EventsFile))
		if err != nil {
			return nil, err
		}
		events = append(events, fromFile...)
	}

	if len(s.Events) > 0 {
		// Inline events go through the same JSON decoder as log files.
		data, err := json.Marshal(s.Events)
		if err != nil {
			return nil, fmt.Errorf("encode inline events: %w", err)
		}
		inline, err := combatlog.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("inline events: %w", err)
		}
		events = append(events, inline...)
	}
	return events, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
