package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_captures_kind ON captures (kind);
CREATE INDEX IF NOT EXISTS idx_series_records_timestamp ON series_records (capture_id, timestamp);`

	insertCaptureSQL = `
INSERT INTO captures (
                      created_at,
                      kind,
                      source,
                      meta)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectCaptureSQL = `
SELECT
    id,
    created_at,
    kind,
    source,
    meta
FROM captures
WHERE
    id = ?`

	selectCapturesSQL = `
SELECT
    id,
    created_at,
    kind,
    source,
    meta
FROM captures
ORDER BY id`

	insertFrameSQL = `
INSERT INTO frames (capture_id,
                    encoding,
                    side,
                    length,
                    dropped,
                    vals)
VALUES (?, ?, ?, ?, ?, ?)`

	selectFrameSQL = `
SELECT
    c.source,
    f.encoding,
    f.side,
    f.length,
    f.vals
FROM frames f
    JOIN captures c ON c.id = f.capture_id
WHERE
    f.capture_id = ?`

	insertSeriesSQL = `
INSERT INTO series (capture_id,
                    header,
                    records)
VALUES (?, ?, ?)`

	selectSeriesSQL = `
SELECT
    header,
    records
FROM series
WHERE
    capture_id = ?`

	insertSeriesRecordSQL = `
INSERT INTO series_records (capture_id,
                            row_num,
                            timestamp,
                            vals)
VALUES `
)
