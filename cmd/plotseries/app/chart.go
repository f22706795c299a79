package app

import (
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/roman-kulish/trackball-inspect/internal/series"
)

const (
	chartDPI          = 96
	defaultWidthInch  = 5.0
	defaultHeightInch = 15.0

	suptitleSize = 18
	tilePadding  = 8
	tileSpacing  = 14
	xAxisLabel   = "Time (s)"
)

var errNoChannels = errors.New("no channels to plot")

// SeriesChart stacks one sub-plot per channel under a common title.
type SeriesChart struct {
	title string
	plots []*plot.Plot
}

// NewSeriesChart builds a sub-plot for every channel against the time axis t.
func NewSeriesChart(title string, t []float64, channels []series.Channel) (*SeriesChart, error) {
	if len(channels) == 0 {
		return nil, errNoChannels
	}

	chart := &SeriesChart{title: title}
	for i, ch := range channels {
		if len(ch.Values) != len(t) {
			return nil, fmt.Errorf("channel %q: %d values for %d timestamps", ch.Label, len(ch.Values), len(t))
		}

		xys := make(plotter.XYs, len(t))
		for j := range t {
			xys[j].X = t[j]
			xys[j].Y = ch.Values[j]
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Label, err)
		}
		line.Width = vg.Points(1)
		line.Color = plotutil.Color(i)

		p := plot.New()
		p.Title.Text = ch.Label
		p.X.Label.Text = xAxisLabel
		p.Add(plotter.NewGrid(), line)

		chart.plots = append(chart.plots, p)
	}

	return chart, nil
}

// Titles returns the sub-plot titles, top to bottom.
func (c *SeriesChart) Titles() []string {
	titles := make([]string, len(c.plots))
	for i, p := range c.plots {
		titles[i] = p.Title.Text
	}
	return titles
}

// Render draws the chart onto an image of the given size.
func (c *SeriesChart) Render(width, height vg.Length) image.Image {
	canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(chartDPI))
	dc := draw.New(canvas)

	sty := c.plots[0].Title.TextStyle
	sty.Font.Size = vg.Points(suptitleSize)
	sty.XAlign = text.XCenter
	sty.YAlign = text.YTop

	pad := vg.Points(tilePadding)
	dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - pad}, c.title)

	titleHeight := sty.Height(c.title) + 2*pad
	area := draw.Crop(dc, 0, 0, 0, -titleHeight)

	tiles := draw.Tiles{
		Rows:      len(c.plots),
		Cols:      1,
		PadTop:    pad,
		PadBottom: pad,
		PadLeft:   pad,
		PadRight:  pad,
		PadY:      vg.Points(tileSpacing),
	}

	grid := make([][]*plot.Plot, len(c.plots))
	for i, p := range c.plots {
		grid[i] = []*plot.Plot{p}
	}

	canvases := plot.Align(grid, tiles, area)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	return canvas.Image()
}
