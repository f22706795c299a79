package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot/vg"

	"github.com/roman-kulish/trackball-inspect/internal/output"
	"github.com/roman-kulish/trackball-inspect/internal/series"
	"github.com/roman-kulish/trackball-inspect/internal/storage"
	"github.com/roman-kulish/trackball-inspect/internal/webchart"
)

// Shower presents a rendered chart and blocks until it is dismissed.
type Shower func(title string, img image.Image) error

// Run loads the log, from a file or from the archive, and plots it. With no
// output file configured the chart is handed to show.
func Run(ctx context.Context, config *Config, logger *slog.Logger, show Shower) (err error) {
	var store *storage.SqliteStore
	if config.DBPath != "" {
		store = storage.NewSqliteStore(config.DBPath)
		defer func() {
			if cErr := store.Close(); cErr != nil && err == nil {
				err = fmt.Errorf("closing archive: %w", cErr)
			}
		}()
	}

	if config.List {
		return listCaptures(ctx, store, logger)
	}

	var s *series.Series
	var source string
	if config.Capture != 0 {
		if s, source, err = readCapture(ctx, store, config, logger); err != nil {
			return err
		}
	} else {
		source = config.File
		logger.Info("reading", slog.String("file", source))
		if s, err = series.Load(source); err != nil {
			return err
		}
	}

	logger.Info("samples",
		slog.Int("count", s.Len()),
		slog.String("records", humanize.Comma(int64(s.Len()))),
		slog.String("duration", fmt.Sprintf("%.3fs", s.Duration())))

	if store != nil && config.Capture == 0 {
		if err = archive(ctx, store, source, s, logger); err != nil {
			return err
		}
	}

	channels, err := s.DefaultChannels()
	if err != nil {
		return fmt.Errorf("selecting channels: %w", err)
	}
	for _, ch := range channels {
		logger.Debug("channel", slog.Int("column", ch.Index), slog.String("label", ch.Label))
	}

	title := filepath.Base(source)
	path := config.OutputPath()

	switch {
	case config.Output == "":
		img, err := render(title, s, channels, config)
		if err != nil {
			return err
		}
		logger.Info("showing chart, close the window to exit")
		return show(title, img)

	case config.Format.IsImage():
		img, err := render(title, s, channels, config)
		if err != nil {
			return err
		}
		if err = output.WriteImage(path, config.Format, img); err != nil {
			return err
		}

	default:
		if err = output.WriteFile(path, func(w io.Writer) error {
			return webchart.Series(w, title, s.Time(), channels)
		}); err != nil {
			return err
		}
	}

	logger.Info("chart written", slog.String("path", path))
	return nil
}

func render(title string, s *series.Series, channels []series.Channel, config *Config) (image.Image, error) {
	chart, err := NewSeriesChart(title, s.Time(), channels)
	if err != nil {
		return nil, fmt.Errorf("building chart: %w", err)
	}
	return chart.Render(vg.Length(config.Width)*vg.Inch, vg.Length(config.Height)*vg.Inch), nil
}

func readCapture(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) (*series.Series, string, error) {
	capture, err := store.Capture(ctx, config.Capture)
	if err != nil {
		return nil, "", fmt.Errorf("reading capture %d: %w", config.Capture, err)
	}
	if capture.Kind != storage.KindSeries {
		return nil, "", fmt.Errorf("capture %d holds a %s, not a series", capture.ID, capture.Kind)
	}

	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.From != nil && config.To != nil:
		opts = append(opts, storage.WithTimeRange(*config.From, *config.To))
		filters = append(filters, slog.Int64("from", *config.From), slog.Int64("to", *config.To))

	case config.From != nil:
		opts = append(opts, storage.WithStartTime(*config.From))
		filters = append(filters, slog.Int64("from", *config.From))

	case config.To != nil:
		opts = append(opts, storage.WithEndTime(*config.To))
		filters = append(filters, slog.Int64("to", *config.To))
	}

	logger.Info("reading",
		append([]any{slog.Int64("capture", capture.ID), slog.String("file", capture.Source)}, filters...)...)

	s, err := store.SeriesRecords(ctx, capture.ID, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("reading capture %d: %w", capture.ID, err)
	}
	return s, capture.Source, nil
}

func listCaptures(ctx context.Context, store *storage.SqliteStore, logger *slog.Logger) error {
	captures, err := store.Captures(ctx)
	if err != nil {
		return fmt.Errorf("listing captures: %w", err)
	}

	for _, c := range captures {
		if c.Kind != storage.KindSeries {
			continue
		}
		logger.Info("capture",
			slog.Int64("id", c.ID),
			slog.String("file", c.Source),
			slog.String("created", c.CreatedAt.Format(time.DateTime)))
	}
	return nil
}

func archive(ctx context.Context, store *storage.SqliteStore, source string, s *series.Series, logger *slog.Logger) error {
	meta := map[string]any{
		"records":  s.Len(),
		"columns":  s.Width(),
		"duration": s.Duration(),
	}
	captureID, err := store.CreateCapture(ctx, storage.KindSeries, source, meta)
	if err != nil {
		return fmt.Errorf("archiving series: %w", err)
	}
	if err = store.StoreSeries(ctx, captureID, s); err != nil {
		return fmt.Errorf("archiving series: %w", err)
	}

	logger.Info("series archived", slog.Int64("capture", captureID))
	return nil
}
