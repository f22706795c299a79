package app

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/roman-kulish/trackball-inspect/internal/colormap"
	"github.com/roman-kulish/trackball-inspect/internal/frame"
)

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func testFrame(t *testing.T, source string, values ...int) *frame.Frame {
	t.Helper()
	grid, err := frame.Reshape(values)
	if err != nil {
		t.Fatalf("Failed to reshape: %v", err)
	}
	return &frame.Frame{Source: source, Encoding: frame.Text, Values: values, Grid: grid}
}

func TestFrameRenderer_Size(t *testing.T) {
	r, err := NewFrameRenderer(RenderConfig{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	w1, h1 := r.Size(1)
	w3, h3 := r.Size(3)
	if h1 != h3 {
		t.Errorf("Expected height independent of frame count, got %d and %d", h1, h3)
	}
	if got, want := w3-w1, 2*(defaultPanelSize+defaultPanelGap); got != want {
		t.Errorf("Expected width to grow by %d, got %d", want, got)
	}
}

func TestFrameRenderer_Render(t *testing.T) {
	r, err := NewFrameRenderer(RenderConfig{Theme: colormap.GrayscaleTheme, PanelSize: 100})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	frames := []*frame.Frame{
		testFrame(t, "dir/first.txt", 0, 255, 255, 0),
		testFrame(t, "dir/second.txt", 255, 0, 0, 255, 9),
	}
	img, err := r.Render(frames)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	w, h := r.Size(len(frames))
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("Expected %dx%d image, got %dx%d", w, h, b.Dx(), b.Dy())
	}

	cm := colormap.NewColorMapper(colormap.GrayscaleTheme, colormap.ByteBounds())
	top, left := defaultTopBorder, defaultLeftBorder
	testCases := []struct {
		name string
		x, y int
		want color.Color
	}{
		{"first panel top left", left + 10, top + 10, cm.Color(0)},
		{"first panel top right", left + 90, top + 10, cm.Color(255)},
		{"second panel top left", left + 100 + defaultPanelGap + 10, top + 10, cm.Color(255)},
		{"second panel bottom left", left + 100 + defaultPanelGap + 10, top + 90, cm.Color(0)},
		{"gap", left + 100 + defaultPanelGap/2, top + 50, color.White},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := img.At(tc.x, tc.y); !sameColor(got, tc.want) {
				t.Errorf("Expected %v at (%d, %d), got %v", tc.want, tc.x, tc.y, got)
			}
		})
	}

	barX := left + 2*(100+defaultPanelGap)
	if got := img.At(barX+colorBarWidth/2, top); !sameColor(got, r.colorMap.Color(colormap.ByteMax)) {
		t.Errorf("Expected color bar to start at the maximum, got %v", got)
	}
	if got := img.At(barX+colorBarWidth/2, top+99); !sameColor(got, r.colorMap.Color(colormap.ByteMin)) {
		t.Errorf("Expected color bar to end at the minimum, got %v", got)
	}
}

func TestFrameRenderer_Caption(t *testing.T) {
	r, err := NewFrameRenderer(RenderConfig{PanelSize: 200})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	img, err := r.Render([]*frame.Frame{testFrame(t, "a.txt", 0, 0, 0, 0)})
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	inked := 0
	for y := 0; y < captionHeight; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			if cr, _, _, _ := img.At(x, y).RGBA(); cr < 0x8000 {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Errorf("Expected %q to be drawn above the panels", figureCaption)
	}
}

func TestFrameRenderer_NoFrames(t *testing.T) {
	r, err := NewFrameRenderer(RenderConfig{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	if _, err = r.Render(nil); !errors.Is(err, errNoFrames) {
		t.Errorf("Expected errNoFrames, got %v", err)
	}
}

func TestNewFrameRenderer_UnknownTheme(t *testing.T) {
	if _, err := NewFrameRenderer(RenderConfig{Theme: "sepia"}); err == nil {
		t.Error("Expected error for an unknown theme")
	}
}

func TestFitTitle(t *testing.T) {
	ann, err := newAnnotator(color.Black)
	if err != nil {
		t.Fatalf("Failed to create annotator: %v", err)
	}
	defer ann.Close()

	if got := fitTitle(ann, "a.txt", 200); got != "a.txt" {
		t.Errorf("Expected short title unchanged, got %q", got)
	}

	long := strings.Repeat("x", 200) + ".txt"
	got := fitTitle(ann, long, 100)
	if !strings.HasPrefix(got, "…") || !strings.HasSuffix(got, ".txt") {
		t.Errorf("Expected title shortened from the left, got %q", got)
	}
	if ann.titleWidth(got) > 100 {
		t.Errorf("Expected title to fit into 100px, got %d", ann.titleWidth(got))
	}
}
