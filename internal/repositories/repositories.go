// package repositories provides SQLite persistence for the import domain.
//
// Each repository implements models.Repository[T] for one entity, with soft
// deletes (deleted_at) and per-table sequence counters. Import job results
// are stored as a JSON column; playlist membership lives in a junction table
// whose positions are written only by the materializer.
package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence increments and returns the per-table counter backing
// human-readable entity numbering (job #42, playlist #15). Sequences are
// internal; API payloads expose only UUIDs.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return sequence, nil
}
