package touchstore

import (
	"fmt"

	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// EventRecord is a flattened l7track.TouchEvent row, the shape persisted to
// and read back from the touch_event table.
type EventRecord struct {
	EventID        int64
	ScreenID       int
	SessionID      uint32
	Kind           string
	U, V           float64
	DU, DV         float64
	TimestampNanos int64
}

// InsertTouchEvent appends one TouchEvent to screenID's history.
func (db *DB) InsertTouchEvent(screenID int, evt l7track.TouchEvent) error {
	_, err := db.Exec(
		`INSERT INTO touch_event (screen_id, session_id, kind, u, v, du, dv, timestamp_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		screenID, evt.SessionID, evt.Kind.String(), evt.U, evt.V, evt.DU, evt.DV, evt.TimestampNanos,
	)
	if err != nil {
		return fmt.Errorf("touchstore: insert touch event: %w", err)
	}
	return nil
}

// RecentTouchEvents returns up to limit of screenID's most recent events,
// newest first.
func (db *DB) RecentTouchEvents(screenID int, limit int) ([]EventRecord, error) {
	rows, err := db.Query(
		`SELECT event_id, screen_id, session_id, kind, u, v, du, dv, timestamp_unix_nanos
		 FROM touch_event WHERE screen_id = ? ORDER BY timestamp_unix_nanos DESC LIMIT ?`,
		screenID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("touchstore: query recent touch events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var r EventRecord
		if err := rows.Scan(&r.EventID, &r.ScreenID, &r.SessionID, &r.Kind, &r.U, &r.V, &r.DU, &r.DV, &r.TimestampNanos); err != nil {
			return nil, fmt.Errorf("touchstore: scan touch event row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("touchstore: iterate touch event rows: %w", err)
	}
	return records, nil
}

// PruneTouchEventsBefore deletes every event on screenID older than
// beforeUnixNanos, bounding the history table's growth for long-running
// deployments.
func (db *DB) PruneTouchEventsBefore(screenID int, beforeUnixNanos int64) (int64, error) {
	result, err := db.Exec(
		`DELETE FROM touch_event WHERE screen_id = ? AND timestamp_unix_nanos < ?`,
		screenID, beforeUnixNanos,
	)
	if err != nil {
		return 0, fmt.Errorf("touchstore: prune touch events: %w", err)
	}
	return result.RowsAffected()
}
