package main

import (
	"log/slog"
	"os"

	"kiva-console/internal/app"
	"kiva-console/internal/config"
	"kiva-console/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logHandler := logger.NewPrettyHandler(os.Stdout, &logger.Options{
		Level: logger.ParseLevel(cfg.LogLevel),
	})
	slog.SetDefault(slog.New(logHandler))

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize console", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("console run failed", "error", err)
		os.Exit(1)
	}
}
