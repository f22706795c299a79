package series

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fixture = `t,a,b,c,d,e,f,g,h,i
1000000,1,2,3,4,5,6,7,8,9
1500000,1,2,13,14,15,16,17,18,19
3000000,1,2,23,24,25,26,27,28,29
`

func TestParse_NormalizesTime(t *testing.T) {
	s, err := Parse(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}

	got := s.Time()
	if got[0] != 0 {
		t.Errorf("Expected first normalized timestamp to be 0, got %v", got[0])
	}

	want := []float64{0, 0.5, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Time mismatch (-want +got):\n%s", diff)
	}

	if d := s.Duration(); d != 2 {
		t.Errorf("Expected duration 2s, got %v", d)
	}
}

func TestParse_RecordCount(t *testing.T) {
	lines := strings.Count(fixture, "\n")

	s, err := Parse(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}
	if s.Len() != lines-1 {
		t.Errorf("Expected %d records, got %d", lines-1, s.Len())
	}
	if s.Width() != 10 {
		t.Errorf("Expected 10 columns, got %d", s.Width())
	}
}

func TestParse_LargeTimestampsStayExact(t *testing.T) {
	in := "t,a\n9007199254740993,1\n9007199254741993,2\n"

	s, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}

	got := s.Time()
	if got[0] != 0 || got[1] != 0.001 {
		t.Errorf("Expected [0 0.001], got %v", got)
	}
}

func TestDefaultChannels_HeaderMapping(t *testing.T) {
	s, err := Parse(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}

	channels, err := s.DefaultChannels()
	if err != nil {
		t.Fatalf("Failed to select channels: %v", err)
	}

	var labels []string
	var indexes []int
	for _, ch := range channels {
		labels = append(labels, ch.Label)
		indexes = append(indexes, ch.Index)
	}

	if diff := cmp.Diff([]string{"c", "d", "e", "f", "g", "h"}, labels); diff != "" {
		t.Errorf("Label mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 4, 5, 6, 7, 8}, indexes); diff != "" {
		t.Errorf("Index mismatch (-want +got):\n%s", diff)
	}

	// Values follow the label: column "c" holds 3, 13, 23.
	if diff := cmp.Diff([]float64{3, 13, 23}, channels[0].Values); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{8, 18, 28}, channels[5].Values); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TrimsLineEndings(t *testing.T) {
	in := "t,a,b,c,d,e,f,g,h\r\n10,1,2,3,4,5,6,7,8\r\n"

	s, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}
	if last := s.Header[len(s.Header)-1]; last != "h" {
		t.Errorf("Expected last label %q, got %q", "h", last)
	}
}

func TestParse_BareQuotesInHeader(t *testing.T) {
	s, err := Parse(strings.NewReader("t,a,b,c\"x,d,e,f,g,h\n10,1,2,3,4,5,6,7,8\n"))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}
	channels, err := s.DefaultChannels()
	if err != nil {
		t.Fatalf("Failed to select channels: %v", err)
	}
	if channels[0].Label != `c"x` {
		t.Errorf("Expected label %q, got %q", `c"x`, channels[0].Label)
	}
}

func TestDefaultChannels_TooFewColumns(t *testing.T) {
	s, err := Parse(strings.NewReader("t,a,b,c\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}

	if _, err := s.DefaultChannels(); !errors.Is(err, ErrTooFewColumns) {
		t.Errorf("Expected ErrTooFewColumns, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr error
		line    int
		column  int
	}{
		{name: "empty input", input: "", wantErr: ErrNoHeader},
		{name: "header only", input: "t,a,b\n", wantErr: ErrNoRecords},
		{name: "non integer token", input: "t,a\n1,2\n2,x\n", line: 3, column: 2},
		{name: "float token", input: "t,a\n1,2.5\n", line: 2, column: 2},
		{name: "ragged row", input: "t,a,b\n1,2,3\n4,5\n", line: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("Expected error")
			}

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("Expected %v, got %v", tc.wantErr, err)
				}
				return
			}

			var pErr *ParseError
			if !errors.As(err, &pErr) {
				t.Fatalf("Expected *ParseError, got %T: %v", err, err)
			}
			if pErr.Line != tc.line {
				t.Errorf("Expected line %d, got %d", tc.line, pErr.Line)
			}
			if pErr.Column != tc.column {
				t.Errorf("Expected column %d, got %d", tc.column, pErr.Column)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load series: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", s.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
