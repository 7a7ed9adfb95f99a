package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"kiva-console/internal/app"
	"kiva-console/internal/cli"
	"kiva-console/internal/config"
	"kiva-console/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "kivactl:", err)
		return 1
	}

	// Only warnings and errors by default; the console's info chatter is noise here.
	level := logger.ParseLevel(cfg.LogLevel)
	if level < slog.LevelWarn && os.Getenv("LOG_LEVEL") == "" {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stderr, &logger.Options{
		Level: level,
		Plain: !term.IsTerminal(int(os.Stderr.Fd())),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kivactl:", err)
		return 1
	}
	defer func() {
		if err := core.Close(); err != nil {
			slog.Warn("closing session storage failed", "error", err)
		}
	}()

	c := cli.New(core.Session, core.Gateway.Scan, core.Gateway.Orders, os.Stdin, os.Stdout)
	if err := c.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "kivactl:", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
