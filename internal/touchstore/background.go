package touchstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"fmt"

	"github.com/lumentouch/touchcore/internal/touch/l2background"
)

// backgroundPayload is the gob-encoded shape of a background snapshot blob,
// grounded on the teacher's l3grid.serializeGrid/deserializeGrid pair.
type backgroundPayload struct {
	RefDistance []float64
	SeenCount   []uint32
}

func serializeBackground(refDistance []float64, seenCount []uint32) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(backgroundPayload{RefDistance: refDistance, SeenCount: seenCount}); err != nil {
		gz.Close()
		return nil, fmt.Errorf("touchstore: encode background payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("touchstore: close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func deserializeBackground(blob []byte) (backgroundPayload, error) {
	if len(blob) == 0 {
		return backgroundPayload{}, fmt.Errorf("touchstore: empty background blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return backgroundPayload{}, fmt.Errorf("touchstore: open gzip reader: %w", err)
	}
	defer gz.Close()

	var payload backgroundPayload
	if err := gob.NewDecoder(gz).Decode(&payload); err != nil {
		return backgroundPayload{}, fmt.Errorf("touchstore: decode background payload: %w", err)
	}
	return payload, nil
}

// SaveBackgroundSnapshot serializes model's learned state and inserts it as
// the newest snapshot row for sensorID, returning the new row's id.
func (db *DB) SaveBackgroundSnapshot(sensorID string, takenUnixNanos int64, model *l2background.Model) (int64, error) {
	refDistance, seenCount, learning, insufficient := model.Snapshot()
	blob, err := serializeBackground(refDistance, seenCount)
	if err != nil {
		return 0, err
	}

	result, err := db.Exec(
		`INSERT INTO background_snapshot (sensor_id, taken_unix_nanos, angle_count, learning, insufficient, grid_blob)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sensorID, takenUnixNanos, model.AngleCount(), boolToInt(learning), boolToInt(insufficient), blob,
	)
	if err != nil {
		return 0, fmt.Errorf("touchstore: insert background snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("touchstore: background snapshot insert id: %w", err)
	}
	return id, nil
}

// LoadLatestBackgroundSnapshot fetches sensorID's most recent snapshot and
// restores it into model. Returns sql.ErrNoRows if the sensor has never
// been snapshotted.
func (db *DB) LoadLatestBackgroundSnapshot(sensorID string, model *l2background.Model) error {
	var angleCount int
	var learningInt, insufficientInt int
	var blob []byte

	row := db.QueryRow(
		`SELECT angle_count, learning, insufficient, grid_blob
		 FROM background_snapshot WHERE sensor_id = ? ORDER BY snapshot_id DESC LIMIT 1`,
		sensorID,
	)
	if err := row.Scan(&angleCount, &learningInt, &insufficientInt, &blob); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("touchstore: load background snapshot for %s: %w", sensorID, err)
	}
	if angleCount != model.AngleCount() {
		return fmt.Errorf("touchstore: snapshot for %s has %d angles, model bound to %d", sensorID, angleCount, model.AngleCount())
	}

	payload, err := deserializeBackground(blob)
	if err != nil {
		return err
	}
	return model.Restore(payload.RefDistance, payload.SeenCount, learningInt != 0, insufficientInt != 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
