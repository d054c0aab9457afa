package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/masterylens/internal/combatlog"
)

// marshalEvent encodes an event as canonical JSON for the payload column.
// The same bytes feed the event ID hash.
func marshalEvent(ev combatlog.Event) (string, error) {
	data, err := combatlog.MarshalCanonical(ev.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(data), nil
}

func unmarshalEvent(payload string) (combatlog.Event, error) {
	var ev combatlog.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return combatlog.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}
