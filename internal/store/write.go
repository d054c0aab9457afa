package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/masterylens/internal/combatlog"
)

// ErrFightConflict is returned when an import would place a different event
// at a seq already archived for the fight.
var ErrFightConflict = errors.New("fight already archived with different events")

// ImportOptions controls how events are added to a fight.
type ImportOptions struct {
	// Name is the fight's display name. Empty keeps the existing name.
	Name string

	// Source describes where the events came from, e.g. a file path.
	Source string

	// Append numbers the events after the fight's last seq instead of
	// from 1. Used for logs fetched page by page.
	Append bool
}

// ImportResult describes one import batch.
type ImportResult struct {
	ImportID  string `json:"import_id"`
	FightKey  string `json:"fight_key"`
	FirstSeq  int64  `json:"first_seq"`
	Events    int    `json:"events"`
	Inserted  int    `json:"inserted"`
	Duplicate int    `json:"duplicate"`
}

// Import archives events under fightKey in slice order, in one transaction.
//
// Without Append, events are numbered from seq 1 and re-importing the same
// log inserts nothing. Placing a different event at an existing seq returns
// ErrFightConflict and rolls back the whole batch.
func (s *Store) Import(ctx context.Context, fightKey string, events []combatlog.Event, opts ImportOptions) (ImportResult, error) {
	if fightKey == "" {
		return ImportResult{}, fmt.Errorf("import: fight key is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO fights (key, name) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET name = excluded.name WHERE excluded.name != ''
	`, fightKey, opts.Name)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: upsert fight: %w", err)
	}

	firstSeq := int64(1)
	if opts.Append {
		var last sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(seq) FROM events WHERE fight_key = ?`, fightKey,
		).Scan(&last); err != nil {
			return ImportResult{}, fmt.Errorf("import: last seq: %w", err)
		}
		firstSeq = last.Int64 + 1
	}

	result := ImportResult{
		ImportID: s.ids.Generate(),
		FightKey: fightKey,
		FirstSeq: firstSeq,
		Events:   len(events),
	}

	// The import row must exist before events reference it; inserted is
	// filled in once the batch is written.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO imports (id, fight_key, source, event_count, inserted)
		VALUES (?, ?, ?, ?, 0)
	`, result.ImportID, fightKey, opts.Source, len(events))
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: write batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (id, fight_key, seq, import_id, type, source_id, timestamp, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: prepare: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		seq := firstSeq + int64(i)

		id, err := combatlog.EventID(fightKey, seq, ev)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import: event %d: %w", seq, err)
		}
		payload, err := marshalEvent(ev)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import: event %d: %w", seq, err)
		}

		res, err := stmt.ExecContext(ctx,
			id, fightKey, seq, result.ImportID,
			string(ev.Type), int64(ev.SourceID), ev.Timestamp, payload,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ImportResult{}, fmt.Errorf("import %q seq %d: %w", fightKey, seq, ErrFightConflict)
			}
			return ImportResult{}, fmt.Errorf("import: event %d: %w", seq, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return ImportResult{}, fmt.Errorf("import: event %d: %w", seq, err)
		}
		if n == 0 {
			result.Duplicate++
		} else {
			result.Inserted++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE imports SET inserted = ? WHERE id = ?`, result.Inserted, result.ImportID,
	); err != nil {
		return ImportResult{}, fmt.Errorf("import: finish batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("import: commit: %w", err)
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
