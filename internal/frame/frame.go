package frame

import (
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrEmptyFrame is returned when a source holds no values at all.
var ErrEmptyFrame = errors.New("empty frame")

// Grid is a square, row-major intensity map.
type Grid [][]int

// Side returns the side length of the grid.
func (g Grid) Side() int {
	return len(g)
}

// Flatten returns the grid cells in row-major order.
func (g Grid) Flatten() []int {
	out := make([]int, 0, len(g)*len(g))
	for _, row := range g {
		out = append(out, row...)
	}
	return out
}

// Frame is a sensor frame reconstructed from a single source file.
type Frame struct {
	Source   string
	Encoding Encoding
	Values   []int // every decoded value, including the ones not placed in Grid
	Grid     Grid
}

// Dropped returns how many trailing values did not fit into the square grid.
func (f *Frame) Dropped() int {
	return len(f.Values) - f.Grid.Side()*f.Grid.Side()
}

// Side returns the integer square root of n, the fractional part discarded.
func Side(n int) int {
	if n <= 0 {
		return 0
	}
	r := int(math.Sqrt(float64(n)))
	// Correct float rounding at perfect squares near the precision limit.
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// Reshape slices the first R*R values into an R x R grid, R = Side(len(values)).
// Values beyond R*R are left out without error.
func Reshape(values []int) (Grid, error) {
	side := Side(len(values))
	if side == 0 {
		return nil, ErrEmptyFrame
	}

	grid := make(Grid, side)
	for i := range grid {
		row := make([]int, side)
		copy(row, values[i*side:(i+1)*side])
		grid[i] = row
	}
	return grid, nil
}

// Load reads the frame stored at path. The encoding is chosen by file size.
func Load(path string) (*Frame, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}

	enc := DetectEncoding(stat.Size())
	values, err := decodeFile(path, enc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s frame '%s': %w", enc, path, err)
	}

	grid, err := Reshape(values)
	if err != nil {
		return nil, fmt.Errorf("reshaping frame '%s': %w", path, err)
	}

	return &Frame{
		Source:   path,
		Encoding: enc,
		Values:   values,
		Grid:     grid,
	}, nil
}

func decodeFile(path string, enc Encoding) (values []int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch enc {
	case Binary:
		return DecodeBinary(f)
	default:
		return DecodeText(f)
	}
}
