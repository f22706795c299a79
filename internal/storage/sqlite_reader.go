package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// RecordReader iterates over the archived rows of a series capture.
type RecordReader interface {
	// Next advances to the next record and reports whether there is one.
	Next(context.Context) bool

	// Current returns the record read by the last successful Next.
	Current() *Record

	// Error returns the error that stopped the iteration, if any.
	Error() error

	Close() error
}

// ReaderOption narrows the rows returned by a SqliteRecordReader.
type ReaderOption func(*SqliteRecordReader)

// WithStartTime skips records with a raw timestamp before t.
func WithStartTime(t int64) ReaderOption {
	return func(r *SqliteRecordReader) {
		r.startTime = &t
	}
}

// WithEndTime skips records with a raw timestamp after t.
func WithEndTime(t int64) ReaderOption {
	return func(r *SqliteRecordReader) {
		r.endTime = &t
	}
}

// WithTimeRange is WithStartTime and WithEndTime combined.
func WithTimeRange(start, end int64) ReaderOption {
	return func(r *SqliteRecordReader) {
		r.startTime = &start
		r.endTime = &end
	}
}

var _ RecordReader = (*SqliteRecordReader)(nil)

// SqliteRecordReader implements RecordReader for the SQLite backend.
type SqliteRecordReader struct {
	captureID int64

	startTime *int64
	endTime   *int64

	rows    *sql.Rows
	current *Record
	err     error
}

func newSqliteRecordReader(ctx context.Context, db *sql.DB, captureID int64, opts ...ReaderOption) (*SqliteRecordReader, error) {
	if db == nil {
		return nil, errors.New("database connection required")
	}
	if captureID <= 0 {
		return nil, errors.New("capture ID required")
	}

	rr := &SqliteRecordReader{captureID: captureID}
	for _, opt := range opts {
		opt(rr)
	}

	query, args := rr.buildQuery()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	rr.rows = rows
	return rr, nil
}

func (rr *SqliteRecordReader) buildQuery() (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
SELECT
    row_num,
    timestamp,
    vals
FROM series_records
WHERE
    capture_id = ?`)

	args := []any{rr.captureID}
	if rr.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, *rr.startTime)
	}
	if rr.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, *rr.endTime)
	}
	sb.WriteString(" ORDER BY row_num")

	return sb.String(), args
}

func (rr *SqliteRecordReader) Next(ctx context.Context) bool {
	if rr.err != nil || rr.rows == nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		rr.err = err
		return false
	}

	if !rr.rows.Next() {
		rr.err = rr.rows.Err()
		return false
	}

	var data recordData
	if err := rr.rows.Scan(&data.Row, &data.Timestamp, &data.Values); err != nil {
		rr.err = fmt.Errorf("scanning record: %w", err)
		return false
	}

	values, err := decodeValues[float64](data.Values)
	if err != nil {
		rr.err = fmt.Errorf("record %d: %w", data.Row, err)
		return false
	}

	rr.current = &Record{Row: data.Row, Timestamp: data.Timestamp, Values: values}
	return true
}

func (rr *SqliteRecordReader) Current() *Record {
	return rr.current
}

func (rr *SqliteRecordReader) Error() error {
	return rr.err
}

func (rr *SqliteRecordReader) Close() error {
	if rr.rows == nil {
		return nil
	}
	err := rr.rows.Close()
	rr.rows = nil
	return err
}
