package webchart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/roman-kulish/trackball-inspect/internal/colormap"
	"github.com/roman-kulish/trackball-inspect/internal/frame"
	"github.com/roman-kulish/trackball-inspect/internal/series"
)

func TestSeries(t *testing.T) {
	s, err := series.Parse(strings.NewReader("t,a,b,ch_c,ch_d,ch_e,ch_f,ch_g,ch_h\n0,1,2,3,4,5,6,7,8\n500000,1,2,30,40,50,60,70,80\n"))
	if err != nil {
		t.Fatalf("Failed to parse series: %v", err)
	}
	channels, err := s.DefaultChannels()
	if err != nil {
		t.Fatalf("Failed to select channels: %v", err)
	}

	var buf bytes.Buffer
	if err := Series(&buf, "log.csv", s.Time(), channels); err != nil {
		t.Fatalf("Failed to render series page: %v", err)
	}

	html := buf.String()
	for _, label := range []string{"log.csv", "ch_c", "ch_h"} {
		if !strings.Contains(html, label) {
			t.Errorf("Expected page to contain %s", label)
		}
	}
}

func TestSeries_LengthMismatch(t *testing.T) {
	channels := []series.Channel{{Index: 3, Label: "c", Values: []float64{1}}}
	if err := Series(&bytes.Buffer{}, "x", []float64{0, 1}, channels); err == nil {
		t.Error("Expected error for mismatched channel length")
	}
}

func TestFrames(t *testing.T) {
	grid, err := frame.Reshape([]int{0, 15, 163, 255})
	if err != nil {
		t.Fatalf("Failed to reshape: %v", err)
	}
	frames := []*frame.Frame{
		{Source: "dir/first.txt", Encoding: frame.Text, Grid: grid},
		{Source: "dir/second.txt", Encoding: frame.Text, Grid: grid},
	}

	var buf bytes.Buffer
	if err := Frames(&buf, "frames", colormap.PlasmaTheme, frames); err != nil {
		t.Fatalf("Failed to render frames page: %v", err)
	}

	html := buf.String()
	for _, s := range []string{"first.txt", "second.txt", frameSubtitle, "#0d0887"} {
		if !strings.Contains(html, s) {
			t.Errorf("Expected page to contain %q", s)
		}
	}
}
