package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/trackball-inspect/internal/series"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

func toMetaData(meta any) (sql.NullString, error) {
	switch m := meta.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: m, Valid: true}, nil
	case []byte:
		return sql.NullString{String: string(m), Valid: true}, nil
	default:
		p, err := json.Marshal(m)
		if err != nil {
			return sql.NullString{}, fmt.Errorf("marshaling meta: %w", err)
		}
		return sql.NullString{String: string(p), Valid: true}, nil
	}
}

func toCapture(data *captureData) *Capture {
	c := &Capture{
		ID:        data.ID,
		CreatedAt: data.CreatedAt.UTC(),
		Kind:      CaptureKind(data.Kind),
		Source:    data.Source,
	}
	if data.Meta.Valid {
		c.Meta = &data.Meta.String
	}
	return c
}

func encodeValues[T int | float64](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	p, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding values: %w", err)
	}
	return string(p), nil
}

func decodeValues[T int | float64](s string) ([]T, error) {
	var values []T
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, fmt.Errorf("decoding values: %w", err)
	}
	return values, nil
}

func toHeaderData(header []string) (string, error) {
	p, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("encoding header: %w", err)
	}
	return string(p), nil
}

func fromHeaderData(s string) ([]string, error) {
	var header []string
	if err := json.Unmarshal([]byte(s), &header); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	return header, nil
}

func toRecordData(captureID int64, sr *series.Series, i int) (*recordData, error) {
	values, err := encodeValues(mat.Row(nil, i, sr.Data))
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", i, err)
	}
	return &recordData{
		CaptureID: captureID,
		Row:       i,
		Timestamp: sr.Timestamps[i],
		Values:    values,
	}, nil
}
