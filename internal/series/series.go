package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const (
	// TimeColumn is the index of the absolute timestamp column.
	TimeColumn = 0

	// FirstChannel and LastChannel bound the plotted channels (inclusive).
	FirstChannel = 3
	LastChannel  = 8

	// MicrosPerSecond converts raw timestamps to seconds.
	MicrosPerSecond = 1_000_000
)

var (
	ErrNoHeader      = errors.New("missing header row")
	ErrNoRecords     = errors.New("no data records")
	ErrTooFewColumns = errors.New("not enough columns")
)

// ParseError reports a malformed data row.
type ParseError struct {
	Line   int    // 1-based line number in the input
	Column int    // 1-based column, 0 when the whole row is at fault
	Value  string // offending token, if any
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %d: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Series is a decoded telemetry log. Every record has exactly len(Header) fields.
type Series struct {
	Header     []string
	Timestamps []int64    // raw column 0, microseconds
	Data       *mat.Dense // records x columns, raw integer values
}

// Channel is one named column ready for plotting.
type Channel struct {
	Index  int
	Label  string
	Values []float64
}

// Load reads and parses the CSV log at path.
func Load(path string) (s *Series, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening series: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing series: %w", cErr)
		}
	}()

	return Parse(f)
}

// Parse decodes a comma separated log whose first line holds the channel
// names and whose remaining lines hold integers, one record per line.
func Parse(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	// The header fixes the arity of every record.
	reader.FieldsPerRecord = len(header)
	reader.ReuseRecord = true

	var (
		timestamps []int64
		data       []float64
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, fmt.Errorf("reading record: %w", err)
		}

		line, _ := reader.FieldPos(0)
		for col, field := range record {
			token := strings.TrimSpace(field)
			v, err := strconv.ParseInt(token, 10, 64)
			if err != nil {
				return nil, &ParseError{Line: line, Column: col + 1, Value: token, Err: err}
			}
			if col == TimeColumn {
				timestamps = append(timestamps, v)
			}
			data = append(data, float64(v))
		}
	}

	if len(timestamps) == 0 {
		return nil, ErrNoRecords
	}

	return &Series{
		Header:     header,
		Timestamps: timestamps,
		Data:       mat.NewDense(len(timestamps), len(header), data),
	}, nil
}

// Len returns the number of data records.
func (s *Series) Len() int {
	return len(s.Timestamps)
}

// Width returns the number of columns per record.
func (s *Series) Width() int {
	return len(s.Header)
}

// Time returns the timestamps relative to the first record, in seconds.
// The first element is always exactly zero.
func (s *Series) Time() []float64 {
	start := s.Timestamps[0]
	out := make([]float64, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		out[i] = float64(ts-start) / MicrosPerSecond
	}
	return out
}

// Duration returns the span of the log in seconds.
func (s *Series) Duration() float64 {
	return float64(s.Timestamps[len(s.Timestamps)-1]-s.Timestamps[0]) / MicrosPerSecond
}

// Column returns the raw values of column i.
func (s *Series) Column(i int) ([]float64, error) {
	if i < 0 || i >= s.Width() {
		return nil, fmt.Errorf("column %d of %d: %w", i, s.Width(), ErrTooFewColumns)
	}
	return mat.Col(nil, i, s.Data), nil
}

// Channels returns the columns in the half-open range [from, to), each paired
// with its header label.
func (s *Series) Channels(from, to int) ([]Channel, error) {
	if from < 0 || from > to {
		return nil, fmt.Errorf("invalid channel range [%d, %d)", from, to)
	}
	if to > s.Width() {
		return nil, fmt.Errorf("channels [%d, %d) need %d columns, header has %d: %w",
			from, to, to, s.Width(), ErrTooFewColumns)
	}

	channels := make([]Channel, 0, to-from)
	for i := from; i < to; i++ {
		values, err := s.Column(i)
		if err != nil {
			return nil, err
		}
		channels = append(channels, Channel{Index: i, Label: s.Header[i], Values: values})
	}
	return channels, nil
}

// DefaultChannels returns the six plotted channels, columns 3 through 8.
func (s *Series) DefaultChannels() ([]Channel, error) {
	return s.Channels(FirstChannel, LastChannel+1)
}
