package combatlog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainEvent separates event IDs from any other hash in the system.
// The version suffix allows migrating the encoding later.
const DomainEvent = "masterylens/event/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID of an event at position seq in
// the named fight. Identical events at different positions get distinct IDs,
// since logs legitimately repeat lines (two identical ticks in one ms).
func EventID(fightKey string, seq int64, ev Event) (string, error) {
	obj := map[string]any{
		"fight_key": fightKey,
		"seq":       seq,
		"event":     ev.CanonicalMap(),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustEventID is like EventID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventID(fightKey string, seq int64, ev Event) string {
	id, err := EventID(fightKey, seq, ev)
	if err != nil {
		panic(err)
	}
	return id
}
