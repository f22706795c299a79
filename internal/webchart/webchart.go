// Package webchart renders series and frames as interactive HTML pages.
package webchart

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/roman-kulish/trackball-inspect/internal/colormap"
	"github.com/roman-kulish/trackball-inspect/internal/frame"
	"github.com/roman-kulish/trackball-inspect/internal/series"
)

const (
	seriesChartWidth  = "900px"
	seriesChartHeight = "260px"
	frameChartSize    = "520px"
	visualMapStops    = 10

	frameSubtitle = "Pan and Zoom on colorbar to adjust"
)

// Series writes one zoomable line chart per channel, all sharing the time axis.
func Series(w io.Writer, title string, t []float64, channels []series.Channel) error {
	page := components.NewPage()
	page.SetPageTitle(title)

	for _, ch := range channels {
		if len(ch.Values) != len(t) {
			return fmt.Errorf("channel %q has %d values, time axis has %d", ch.Label, len(ch.Values), len(t))
		}

		data := make([]opts.LineData, len(t))
		for i := range t {
			data[i] = opts.LineData{Value: []interface{}{t[i], ch.Values[i]}}
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: seriesChartWidth, Height: seriesChartHeight}),
			charts.WithTitleOpts(opts.Title{Title: ch.Label}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "s"}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
			charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		)
		line.AddSeries(ch.Label, data)
		page.AddCharts(line)
	}

	return page.Render(w)
}

// Frames writes one heat map per frame, side by side. Every chart maps the
// fixed [0, 255] range; only the last chart shows its color bar.
func Frames(w io.Writer, title string, theme colormap.Theme, frames []*frame.Frame) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetLayout(components.PageFlexLayout)

	stops := colormap.Stops(theme, visualMapStops)
	for i, f := range frames {
		side := f.Grid.Side()
		axis := make([]string, side)
		for j := range axis {
			axis[j] = strconv.Itoa(j)
		}
		data := make([]opts.HeatMapData, 0, side*side)
		for y, row := range f.Grid {
			for x, v := range row {
				data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
			}
		}

		last := i == len(frames)-1
		hm := charts.NewHeatMap()
		hm.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: frameChartSize, Height: frameChartSize}),
			charts.WithTitleOpts(opts.Title{Title: filepath.Base(f.Source), Subtitle: frameSubtitle}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: axis}),
			// Row 0 is drawn at the top, as in an image.
			charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: axis, Inverse: opts.Bool(true)}),
			charts.WithVisualMapOpts(opts.VisualMap{
				Show:       opts.Bool(last),
				Calculable: opts.Bool(true),
				Min:        colormap.ByteMin,
				Max:        colormap.ByteMax,
				Text:       []string{"Value Range"},
				InRange:    &opts.VisualMapInRange{Color: stops},
			}),
		)
		hm.SetXAxis(axis).AddSeries(filepath.Base(f.Source), data)
		page.AddCharts(hm)
	}

	return page.Render(w)
}
