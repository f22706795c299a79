package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"

	xdraw "golang.org/x/image/draw"

	"github.com/roman-kulish/trackball-inspect/internal/colormap"
	"github.com/roman-kulish/trackball-inspect/internal/frame"
)

const (
	defaultPanelSize = 360 // pixels per panel side
	defaultPanelGap  = 30
	colorBarWidth    = 20
	colorBarLabels   = 50
	colorBarTickStep = 50

	// Default border sizes in pixels
	defaultTopBorder    = 80 // caption band plus panel titles
	defaultLeftBorder   = 20
	defaultBottomBorder = 40
	defaultRightBorder  = 20

	captionHeight = 30

	colorBarLabel = "Value Range"
	figureCaption = "Pan and Zoom on colorbar to adjust"
)

var errNoFrames = errors.New("no frames to render")

// BorderConfig defines the sizes of white space around the panels
type BorderConfig struct {
	Top    int // Space for the caption and panel titles
	Left   int
	Bottom int // Space for the color bar label
	Right  int
}

// RenderConfig holds all configuration options for frame visualization
type RenderConfig struct {
	Theme     colormap.Theme
	PanelSize int // Side of one frame panel in pixels, frames are upscaled to it
	PanelGap  int

	BorderConfig BorderConfig
}

// FrameRenderer lays frames out side by side, sharing one color bar.
type FrameRenderer struct {
	config RenderConfig

	// colorMap is the mapper of the most recently drawn panel. The color bar
	// is drawn from it, as all panels share the fixed byte range.
	colorMap *colormap.ColorMapper
}

// NewFrameRenderer creates a new frame renderer with the given configuration
func NewFrameRenderer(config RenderConfig) (*FrameRenderer, error) {
	theme, err := colormap.ParseTheme(string(config.Theme))
	if err != nil {
		return nil, err
	}
	config.Theme = theme

	if config.PanelSize <= 0 {
		config.PanelSize = defaultPanelSize
	}
	if config.PanelGap <= 0 {
		config.PanelGap = defaultPanelGap
	}
	if config.BorderConfig.Top <= captionHeight {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &FrameRenderer{config: config}, nil
}

// Size returns the dimensions of the figure for n frames.
func (r *FrameRenderer) Size(n int) (width, height int) {
	c := r.config
	width = c.BorderConfig.Left +
		n*c.PanelSize + (n-1)*c.PanelGap +
		c.PanelGap + colorBarWidth + colorBarLabels +
		c.BorderConfig.Right
	height = c.BorderConfig.Top + c.PanelSize + c.BorderConfig.Bottom
	return width, height
}

// Render draws every frame as a false-color panel and appends the color bar.
func (r *FrameRenderer) Render(frames []*frame.Frame) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, errNoFrames
	}

	width, height := r.Size(len(frames))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(img, img.Bounds(), image.White, image.Point{}, xdraw.Src)

	ann, err := newAnnotator(color.Black)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()
	ann.bind(img)

	if err = ann.drawTitle(figureCaption, width/2, captionHeight/2, alignCenter); err != nil {
		return nil, fmt.Errorf("drawing caption: %w", err)
	}

	c := r.config
	titleY := captionHeight + (c.BorderConfig.Top-captionHeight)/2
	for i, f := range frames {
		x := c.BorderConfig.Left + i*(c.PanelSize+c.PanelGap)
		area := image.Rect(x, c.BorderConfig.Top, x+c.PanelSize, c.BorderConfig.Top+c.PanelSize)

		r.colorMap = colormap.NewColorMapper(c.Theme, colormap.ByteBounds())
		r.renderPanel(img, area, f.Grid)

		title := fitTitle(ann, filepath.Base(f.Source), c.PanelSize)
		if err = ann.drawTitle(title, area.Min.X+c.PanelSize/2, titleY, alignCenter); err != nil {
			return nil, fmt.Errorf("drawing panel title: %w", err)
		}
	}

	barX := c.BorderConfig.Left + len(frames)*(c.PanelSize+c.PanelGap)
	bar := image.Rect(barX, c.BorderConfig.Top, barX+colorBarWidth, c.BorderConfig.Top+c.PanelSize)
	if err = r.renderColorBar(img, bar, ann); err != nil {
		return nil, fmt.Errorf("drawing color bar: %w", err)
	}

	return img, nil
}

// renderPanel paints grid cells with the current color map and scales them into area.
func (r *FrameRenderer) renderPanel(img *image.RGBA, area image.Rectangle, grid frame.Grid) {
	side := grid.Side()
	src := image.NewRGBA(image.Rect(0, 0, side, side))
	for y, row := range grid {
		for x, v := range row {
			src.Set(x, y, r.colorMap.Color(float64(v)))
		}
	}
	xdraw.NearestNeighbor.Scale(img, area, src, src.Bounds(), xdraw.Src, nil)
}

func (r *FrameRenderer) renderColorBar(img *image.RGBA, bar image.Rectangle, ann *annotator) error {
	bounds := r.colorMap.Bounds()
	span := bounds.Max - bounds.Min
	h := bar.Dy()

	for y := 0; y < h; y++ {
		v := bounds.Max - span*float64(y)/float64(h-1)
		c := r.colorMap.Color(v)
		for x := bar.Min.X; x < bar.Max.X; x++ {
			img.Set(x, bar.Min.Y+y, c)
		}
	}

	for v := int(bounds.Min); v <= int(bounds.Max); v += colorBarTickStep {
		y := bar.Max.Y - 1 - int(float64(v)-bounds.Min)*(h-1)/int(span)
		for x := bar.Max.X; x < bar.Max.X+tickMarkLength; x++ {
			img.Set(x, y, color.Black)
		}
		if err := ann.drawLabel(strconv.Itoa(v), bar.Max.X+tickMarkLength+3, y, alignLeft); err != nil {
			return err
		}
	}

	return ann.drawLabel(colorBarLabel, bar.Min.X+bar.Dx()/2, bar.Max.Y+r.config.BorderConfig.Bottom/2, alignCenter)
}

// fitTitle shortens s from the left until it fits into width pixels.
func fitTitle(ann *annotator, s string, width int) string {
	if ann.titleWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[1:]
		candidate := "…" + string(runes)
		if ann.titleWidth(candidate) <= width {
			return candidate
		}
	}
	return s
}
