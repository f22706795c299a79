package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/roman-kulish/trackball-inspect/cmd/plotframe/app"
	"github.com/roman-kulish/trackball-inspect/internal/display"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	config, err := app.NewConfigFromCLI(filepath.Base(os.Args[0]), os.Args[1:], os.Stdout)
	if errors.Is(err, app.ErrUsage) {
		os.Exit(0)
	}
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	logLevel.Set(config.Level())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger, display.Show); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
