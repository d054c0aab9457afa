package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/masterylens/internal/combatlog"
)

// StoredEvent is an archived event with its position and identity.
type StoredEvent struct {
	ID       string
	Seq      int64
	ImportID string
	Event    combatlog.Event
}

// Fight summarizes one archived fight.
type Fight struct {
	Key            string `json:"key"`
	Name           string `json:"name,omitempty"`
	Events         int    `json:"events"`
	Imports        int    `json:"imports"`
	FirstTimestamp int64  `json:"first_timestamp"`
	LastTimestamp  int64  `json:"last_timestamp"`
}

// ReadEvents returns a fight's events with seq > afterSeq, in log order.
// Pass 0 to read the whole fight. Returns an empty slice for unknown keys.
func (s *Store) ReadEvents(ctx context.Context, fightKey string, afterSeq int64) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, import_id, payload
		FROM events
		WHERE fight_key = ? AND seq > ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, fightKey, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []StoredEvent{}
	for rows.Next() {
		var (
			se      StoredEvent
			payload string
		)
		if err := rows.Scan(&se.ID, &se.Seq, &se.ImportID, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		se.Event, err = unmarshalEvent(payload)
		if err != nil {
			return nil, fmt.Errorf("event seq %d: %w", se.Seq, err)
		}
		events = append(events, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Events strips archive metadata, keeping order.
func Events(stored []StoredEvent) []combatlog.Event {
	out := make([]combatlog.Event, len(stored))
	for i, se := range stored {
		out[i] = se.Event
	}
	return out
}

// ListFights returns every archived fight ordered by key.
func (s *Store) ListFights(ctx context.Context) ([]Fight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.key, f.name,
			(SELECT COUNT(*) FROM events e WHERE e.fight_key = f.key),
			(SELECT COUNT(*) FROM imports i WHERE i.fight_key = f.key),
			(SELECT MIN(timestamp) FROM events e WHERE e.fight_key = f.key),
			(SELECT MAX(timestamp) FROM events e WHERE e.fight_key = f.key)
		FROM fights f
		ORDER BY f.key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query fights: %w", err)
	}
	defer rows.Close()

	fights := []Fight{}
	for rows.Next() {
		var (
			f           Fight
			first, last sql.NullInt64
		)
		if err := rows.Scan(&f.Key, &f.Name, &f.Events, &f.Imports, &first, &last); err != nil {
			return nil, fmt.Errorf("scan fight: %w", err)
		}
		f.FirstTimestamp = first.Int64
		f.LastTimestamp = last.Int64
		fights = append(fights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fights: %w", err)
	}
	return fights, nil
}

// ActorIDs returns the distinct heal sources seen in a fight, ascending.
// Used to suggest --actor values.
func (s *Store) ActorIDs(ctx context.Context, fightKey string) ([]combatlog.ActorID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT source_id FROM events
		WHERE fight_key = ? AND type = ?
		ORDER BY source_id ASC
	`, fightKey, string(combatlog.TypeHeal))
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}
	defer rows.Close()

	ids := []combatlog.ActorID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		ids = append(ids, combatlog.ActorID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}
	return ids, nil
}
