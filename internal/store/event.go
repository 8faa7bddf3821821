package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Named sequences stamped on rows. Row ids can be reused after deletes; a
// sequence value never is.
const seqLLMEvents = "llm_request_events"

func createSequences(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS sequences (
		name     TEXT PRIMARY KEY,
		next_val INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create sequences table: %w", err)
	}
	return nil
}

// nextSeq takes the next value of the named sequence inside tx, so a
// rolled-back insert does not burn a value. Sequences start at 1.
func nextSeq(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var v int64
	err := tx.QueryRowContext(ctx, `INSERT INTO sequences (name, next_val) VALUES (?, 2)
		ON CONFLICT(name) DO UPDATE SET next_val = next_val + 1
		RETURNING next_val - 1`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return v, nil
}
