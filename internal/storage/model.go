package storage

import (
	"database/sql"
	"time"
)

// CaptureKind tells which table holds the payload of a capture.
type CaptureKind string

const (
	KindFrame  CaptureKind = "frame"
	KindSeries CaptureKind = "series"
)

// Capture is one archived input file.
type Capture struct {
	ID        int64
	CreatedAt time.Time
	Kind      CaptureKind
	Source    string
	Meta      *string // JSON, optional
}

// Record is a single archived series row.
type Record struct {
	Row       int
	Timestamp int64 // raw microseconds
	Values    []float64
}

type captureData struct {
	ID        int64
	CreatedAt time.Time
	Kind      string
	Source    string
	Meta      sql.NullString
}

type frameData struct {
	Source   string
	Encoding string
	Side     int
	Length   int
	Values   string
}

type recordData struct {
	CaptureID int64
	Row       int
	Timestamp int64
	Values    string
}
