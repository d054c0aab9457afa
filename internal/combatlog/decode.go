package combatlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// envelope is the paged response shape: {"events": [...], "nextPageTimestamp": n}.
type envelope struct {
	Events            *[]Event `json:"events"`
	NextPageTimestamp int64    `json:"nextPageTimestamp,omitempty"`
}

// Decode reads an ordered event stream from r.
//
// Accepted shapes, which may be mixed and concatenated:
//   - a JSON array of events
//   - an envelope object with an "events" array
//   - one event object per value (JSON lines)
//
// Event order is preserved exactly as it appears in the input.
func Decode(r io.Reader) ([]Event, error) {
	dec := json.NewDecoder(r)
	events := []Event{}

	for index := 0; ; index++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return nil, fmt.Errorf("decode value %d: %w", index, err)
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}

		switch trimmed[0] {
		case '[':
			var batch []Event
			if err := json.Unmarshal(trimmed, &batch); err != nil {
				return nil, fmt.Errorf("decode event array at value %d: %w", index, err)
			}
			events = append(events, batch...)

		case '{':
			var env envelope
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return nil, fmt.Errorf("decode object at value %d: %w", index, err)
			}
			if env.Events != nil {
				events = append(events, (*env.Events)...)
				continue
			}
			var ev Event
			if err := json.Unmarshal(trimmed, &ev); err != nil {
				return nil, fmt.Errorf("decode event at value %d: %w", index, err)
			}
			events = append(events, ev)

		default:
			return nil, fmt.Errorf("decode value %d: expected object or array, got %q", index, trimmed[0])
		}
	}
}

// DecodeFile opens path and decodes its event stream.
func DecodeFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	events, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}
