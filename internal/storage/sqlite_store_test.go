package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/trackball-inspect/internal/frame"
	"github.com/roman-kulish/trackball-inspect/internal/series"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store := NewSqliteStore(filepath.Join(t.TempDir(), "captures.db"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return store
}

func TestSqliteStore_FrameRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	values := []int{0, 15, 163, 255, 7}
	grid, err := frame.Reshape(values)
	if err != nil {
		t.Fatalf("Failed to reshape: %v", err)
	}
	want := &frame.Frame{Source: "dir/frame.txt", Encoding: frame.Text, Values: values, Grid: grid}

	id, err := store.CreateCapture(ctx, KindFrame, want.Source, map[string]int{"dropped": want.Dropped()})
	if err != nil {
		t.Fatalf("Failed to create capture: %v", err)
	}
	if err = store.StoreFrame(ctx, id, want); err != nil {
		t.Fatalf("Failed to store frame: %v", err)
	}

	got, err := store.Frame(ctx, id)
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Frame mismatch (-want +got):\n%s", diff)
	}
	if got.Dropped() != 1 {
		t.Errorf("Expected 1 dropped value, got %d", got.Dropped())
	}
}

func TestSqliteStore_SeriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	want, err := series.Parse(strings.NewReader("t,a,b,c,d,e,f,g,h\n1000000,1,2,3,4,5,6,7,8\n1500000,1,2,30,40,50,60,70,80\n2000000,0,0,-3,-4,-5,-6,-7,-8\n"))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}

	id, err := store.CreateCapture(ctx, KindSeries, "log.csv", nil)
	if err != nil {
		t.Fatalf("Failed to create capture: %v", err)
	}
	if err = store.StoreSeries(ctx, id, want); err != nil {
		t.Fatalf("Failed to store series: %v", err)
	}

	got, err := store.SeriesRecords(ctx, id)
	if err != nil {
		t.Fatalf("Failed to read series: %v", err)
	}
	if diff := cmp.Diff(want.Header, got.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Timestamps, got.Timestamps); diff != "" {
		t.Errorf("Timestamps mismatch (-want +got):\n%s", diff)
	}
	if !mat.Equal(want.Data, got.Data) {
		t.Errorf("Data mismatch:\nwant %v\ngot  %v", mat.Formatted(want.Data), mat.Formatted(got.Data))
	}
}

func TestSqliteStore_ReadRecordsTimeRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	sr, err := series.Parse(strings.NewReader("t,a,b,c,d,e,f,g,h\n0,0,0,0,0,0,0,0,0\n10,1,1,1,1,1,1,1,1\n20,2,2,2,2,2,2,2,2\n30,3,3,3,3,3,3,3,3\n"))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}
	id, err := store.CreateCapture(ctx, KindSeries, "log.csv", nil)
	if err != nil {
		t.Fatalf("Failed to create capture: %v", err)
	}
	if err = store.StoreSeries(ctx, id, sr); err != nil {
		t.Fatalf("Failed to store series: %v", err)
	}

	reader, err := store.ReadRecords(ctx, id, WithTimeRange(10, 20))
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	var rows []int
	for reader.Next(ctx) {
		rows = append(rows, reader.Current().Row)
	}
	if err = reader.Error(); err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}

	tail, err := store.SeriesRecords(ctx, id, WithStartTime(20))
	if err != nil {
		t.Fatalf("Failed to read series tail: %v", err)
	}
	if diff := cmp.Diff([]int64{20, 30}, tail.Timestamps); diff != "" {
		t.Errorf("Timestamps mismatch (-want +got):\n%s", diff)
	}
	if r, c := tail.Data.Dims(); r != 2 || c != 9 {
		t.Errorf("Expected 2x9 records, got %dx%d", r, c)
	}

	if _, err = store.SeriesRecords(ctx, id, WithTimeRange(11, 19)); !errors.Is(err, series.ErrNoRecords) {
		t.Errorf("Expected ErrNoRecords for an empty range, got %v", err)
	}
}

func TestSqliteStore_Captures(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	testCases := []struct {
		kind   CaptureKind
		source string
		meta   any
		want   *string
	}{
		{KindFrame, "a.bin", nil, nil},
		{KindSeries, "b.csv", "raw", ptr("raw")},
		{KindFrame, "c.txt", struct{ Side int }{6}, ptr(`{"Side":6}`)},
	}
	for _, tc := range testCases {
		if _, err := store.CreateCapture(ctx, tc.kind, tc.source, tc.meta); err != nil {
			t.Fatalf("Failed to create capture %s: %v", tc.source, err)
		}
	}

	captures, err := store.Captures(ctx)
	if err != nil {
		t.Fatalf("Failed to list captures: %v", err)
	}
	if len(captures) != len(testCases) {
		t.Fatalf("Expected %d captures, got %d", len(testCases), len(captures))
	}
	for i, tc := range testCases {
		c := captures[i]
		if c.Kind != tc.kind || c.Source != tc.source {
			t.Errorf("Capture %d: expected %s/%s, got %s/%s", i, tc.kind, tc.source, c.Kind, c.Source)
		}
		if diff := cmp.Diff(tc.want, c.Meta); diff != "" {
			t.Errorf("Capture %d meta mismatch (-want +got):\n%s", i, diff)
		}
		if c.CreatedAt.IsZero() {
			t.Errorf("Capture %d: expected creation time", i)
		}
	}

	one, err := store.Capture(ctx, captures[1].ID)
	if err != nil {
		t.Fatalf("Failed to read capture: %v", err)
	}
	if diff := cmp.Diff(captures[1], one); diff != "" {
		t.Errorf("Capture mismatch (-want +got):\n%s", diff)
	}
}

func TestSqliteStore_MissingCapture(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.CreateCapture(ctx, KindFrame, "a.bin", nil); err != nil {
		t.Fatalf("Failed to create capture: %v", err)
	}
	if _, err := store.Frame(ctx, 42); err == nil {
		t.Error("Expected error for a missing frame")
	}
	_, err := store.Capture(ctx, 42)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows, got %v", err)
	}
}

func ptr(s string) *string {
	return &s
}
