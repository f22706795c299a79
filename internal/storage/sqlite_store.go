package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/trackball-inspect/internal/frame"
	"github.com/roman-kulish/trackball-inspect/internal/series"
)

// maxBatchSize caps the rows of one multi-row insert.
const maxBatchSize = 500

// SqliteStore archives frames and series in a SQLite database
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore returns a store backed by the database at dbPath. Connections
// are opened on first use; the schema is created with the write connection.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateCapture registers a new input file. meta may be nil, a string, a byte
// slice or any value that marshals to JSON.
func (s *SqliteStore) CreateCapture(ctx context.Context, kind CaptureKind, source string, meta any) (captureID int64, err error) {
	metaData, err := toMetaData(meta)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertCaptureSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, string(kind), source, metaData)
	if err != nil {
		err = fmt.Errorf("inserting capture: %w", err)
		return
	}

	captureID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting capture ID: %w", err)
	}
	return
}

func (s *SqliteStore) Capture(ctx context.Context, id int64) (capture *Capture, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectCaptureSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data captureData
	if err = stmt.QueryRowContext(ctx, id).Scan(&data.ID, &data.CreatedAt, &data.Kind, &data.Source, &data.Meta); err != nil {
		err = fmt.Errorf("scanning capture: %w", err)
		return
	}

	return toCapture(&data), nil
}

func (s *SqliteStore) Captures(ctx context.Context) (captures []*Capture, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectCapturesSQL)
	if err != nil {
		err = fmt.Errorf("querying captures: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data captureData
		if err = rows.Scan(&data.ID, &data.CreatedAt, &data.Kind, &data.Source, &data.Meta); err != nil {
			err = fmt.Errorf("scanning capture: %w", err)
			return
		}
		captures = append(captures, toCapture(&data))
	}
	err = rows.Err()
	return
}

// StoreFrame archives every decoded value of f, including the ones that did
// not fit into the grid, so the frame can be reshaped again on read.
func (s *SqliteStore) StoreFrame(ctx context.Context, captureID int64, f *frame.Frame) (err error) {
	values, err := encodeValues(f.Values)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertFrameSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, captureID, string(f.Encoding), f.Grid.Side(), len(f.Values), f.Dropped(), values); err != nil {
		return fmt.Errorf("inserting frame: %w", err)
	}
	return nil
}

// Frame reads back an archived frame and rebuilds its grid.
func (s *SqliteStore) Frame(ctx context.Context, captureID int64) (f *frame.Frame, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectFrameSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data frameData
	if err = stmt.QueryRowContext(ctx, captureID).Scan(&data.Source, &data.Encoding, &data.Side, &data.Length, &data.Values); err != nil {
		err = fmt.Errorf("scanning frame: %w", err)
		return
	}

	values, err := decodeValues[int](data.Values)
	if err != nil {
		return
	}
	if len(values) != data.Length {
		err = fmt.Errorf("frame %d: stored %d values, expected %d", captureID, len(values), data.Length)
		return
	}

	grid, err := frame.Reshape(values)
	if err != nil {
		err = fmt.Errorf("reshaping frame: %w", err)
		return
	}
	if grid.Side() != data.Side {
		err = fmt.Errorf("frame %d: side %d, expected %d", captureID, grid.Side(), data.Side)
		return
	}

	return &frame.Frame{
		Source:   data.Source,
		Encoding: frame.Encoding(data.Encoding),
		Values:   values,
		Grid:     grid,
	}, nil
}

// StoreSeries archives the header and every record of sr in one transaction.
func (s *SqliteStore) StoreSeries(ctx context.Context, captureID int64, sr *series.Series) (err error) {
	header, err := toHeaderData(sr.Header)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if _, err = tx.ExecContext(ctx, insertSeriesSQL, captureID, header, sr.Len()); err != nil {
		return fmt.Errorf("inserting series: %w", err)
	}

	for start := 0; start < sr.Len(); start += maxBatchSize {
		end := min(start+maxBatchSize, sr.Len())
		if err = insertRecords(ctx, tx, captureID, sr, start, end); err != nil {
			return fmt.Errorf("batch inserting records %d-%d: %w", start, end, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, captureID int64, sr *series.Series, start, end int) error {
	values := make([]interface{}, 0, (end-start)*4)

	// Build batch insert query
	valuesPlaceholder := "(?, ?, ?, ?)"

	var sb strings.Builder

	sb.WriteString(insertSeriesRecordSQL)

	for i := start; i < end; i++ {
		data, err := toRecordData(captureID, sr, i)
		if err != nil {
			return err
		}
		values = append(values,
			data.CaptureID,
			data.Row,
			data.Timestamp,
			data.Values,
		)

		if i > start {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	_, err := tx.ExecContext(ctx, sb.String(), values...)
	return err
}

// SeriesRecords reads back an archived series in its original row order.
// Options narrow the rows read; without them every archived record is returned.
func (s *SqliteStore) SeriesRecords(ctx context.Context, captureID int64, opts ...ReaderOption) (sr *series.Series, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	var header string
	var count int
	if err = db.QueryRowContext(ctx, selectSeriesSQL, captureID).Scan(&header, &count); err != nil {
		err = fmt.Errorf("scanning series: %w", err)
		return
	}

	sr = &series.Series{Timestamps: make([]int64, 0, count)}
	if sr.Header, err = fromHeaderData(header); err != nil {
		return nil, err
	}

	reader, err := s.ReadRecords(ctx, captureID, opts...)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	defer closeWithError(reader, &err)

	width := len(sr.Header)
	flat := make([]float64, 0, count*width)
	for reader.Next(ctx) {
		rec := reader.Current()
		if len(rec.Values) != width {
			return nil, fmt.Errorf("record %d: %d values, expected %d", rec.Row, len(rec.Values), width)
		}
		sr.Timestamps = append(sr.Timestamps, rec.Timestamp)
		flat = append(flat, rec.Values...)
	}
	if err = reader.Error(); err != nil {
		return nil, err
	}

	if len(sr.Timestamps) == 0 {
		return nil, fmt.Errorf("series %d: %w", captureID, series.ErrNoRecords)
	}
	if len(opts) == 0 && len(sr.Timestamps) != count {
		return nil, fmt.Errorf("series %d: read %d records, expected %d", captureID, len(sr.Timestamps), count)
	}

	sr.Data = mat.NewDense(len(sr.Timestamps), width, flat)
	return sr, nil
}

// ReadRecords returns a reader over the archived rows of a series capture.
func (s *SqliteStore) ReadRecords(ctx context.Context, captureID int64, opts ...ReaderOption) (*SqliteRecordReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteRecordReader(ctx, db, captureID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
