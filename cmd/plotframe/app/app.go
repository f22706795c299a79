package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/trackball-inspect/internal/frame"
	"github.com/roman-kulish/trackball-inspect/internal/output"
	"github.com/roman-kulish/trackball-inspect/internal/storage"
	"github.com/roman-kulish/trackball-inspect/internal/webchart"
)

// Shower presents a rendered figure and blocks until it is dismissed.
type Shower func(title string, img image.Image) error

// Run loads every frame file, then every archived capture, and draws them side
// by side. With no output file configured the figure is handed to show.
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

	loaded := make([]*frame.Frame, 0, len(config.Files))
	for _, path := range config.Files {
		if err = ctx.Err(); err != nil {
			return err
		}

		logger.Info("reading", slog.String("file", path))
		f, err := frame.Load(path)
		if err != nil {
			return err
		}
		logFrame(f, logger)
		loaded = append(loaded, f)
	}

	if store != nil && len(loaded) > 0 {
		if err = archive(ctx, store, loaded, logger); err != nil {
			return err
		}
	}

	frames := loaded
	for _, id := range config.Captures {
		if err = ctx.Err(); err != nil {
			return err
		}

		f, err := readCapture(ctx, store, id, logger)
		if err != nil {
			return err
		}
		logFrame(f, logger)
		frames = append(frames, f)
	}

	title := figureTitle(frames)
	path := config.OutputPath()

	if config.Output != "" && !config.Format.IsImage() {
		if err = output.WriteFile(path, func(w io.Writer) error {
			return webchart.Frames(w, title, config.Theme, frames)
		}); err != nil {
			return err
		}
		logger.Info("figure written", slog.String("path", path))
		return nil
	}

	renderer, err := NewFrameRenderer(RenderConfig{Theme: config.Theme, PanelSize: config.PanelSize})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	img, err := renderer.Render(frames)
	if err != nil {
		return fmt.Errorf("rendering frames: %w", err)
	}

	if config.Output == "" {
		logger.Info("showing figure, close the window to exit")
		return show(title, img)
	}

	if err = output.WriteImage(path, config.Format, img); err != nil {
		return err
	}
	logger.Info("figure written", slog.String("path", path))
	return nil
}

func logFrame(f *frame.Frame, logger *slog.Logger) {
	logger.Info(fmt.Sprintf("%s file format detected", f.Encoding), slog.String("file", f.Source))
	logger.Info("frame length", slog.Int("values", len(f.Values)), slog.String("size", humanize.Comma(int64(len(f.Values)))))
	logger.Info("row length", slog.Int("side", f.Grid.Side()))
	if n := f.Dropped(); n > 0 {
		logger.Debug("values beyond the square grid ignored", slog.String("file", f.Source), slog.Int("dropped", n))
	}
}

func figureTitle(frames []*frame.Frame) string {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = filepath.Base(f.Source)
	}
	return strings.Join(names, ", ")
}

func readCapture(ctx context.Context, store *storage.SqliteStore, id int64, logger *slog.Logger) (*frame.Frame, error) {
	capture, err := store.Capture(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading capture %d: %w", id, err)
	}
	if capture.Kind != storage.KindFrame {
		return nil, fmt.Errorf("capture %d holds a %s, not a frame", capture.ID, capture.Kind)
	}

	logger.Info("reading", slog.Int64("capture", capture.ID), slog.String("file", capture.Source))
	f, err := store.Frame(ctx, capture.ID)
	if err != nil {
		return nil, fmt.Errorf("reading capture %d: %w", capture.ID, err)
	}
	return f, nil
}

func listCaptures(ctx context.Context, store *storage.SqliteStore, logger *slog.Logger) error {
	captures, err := store.Captures(ctx)
	if err != nil {
		return fmt.Errorf("listing captures: %w", err)
	}

	for _, c := range captures {
		if c.Kind != storage.KindFrame {
			continue
		}
		logger.Info("capture",
			slog.Int64("id", c.ID),
			slog.String("file", c.Source),
			slog.String("created", c.CreatedAt.Format(time.DateTime)))
	}
	return nil
}

func archive(ctx context.Context, store *storage.SqliteStore, frames []*frame.Frame, logger *slog.Logger) error {
	for _, f := range frames {
		meta := map[string]any{
			"encoding": f.Encoding,
			"side":     f.Grid.Side(),
			"dropped":  f.Dropped(),
		}
		captureID, err := store.CreateCapture(ctx, storage.KindFrame, f.Source, meta)
		if err != nil {
			return fmt.Errorf("archiving frame %s: %w", f.Source, err)
		}
		if err = store.StoreFrame(ctx, captureID, f); err != nil {
			return fmt.Errorf("archiving frame %s: %w", f.Source, err)
		}
		logger.Debug("frame archived", slog.Int64("capture", captureID), slog.String("file", f.Source))
	}

	logger.Info("frames archived", slog.Int("count", len(frames)))
	return nil
}
