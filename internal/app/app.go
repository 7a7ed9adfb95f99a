package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kiva-console/internal/config"
	"kiva-console/internal/event"
	"kiva-console/internal/handler"
	"kiva-console/internal/router"
	"kiva-console/internal/view"
	"kiva-console/internal/websocket"
)

type App struct {
	server       *http.Server
	core         *Core
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	core, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	views, err := view.New()
	if err != nil {
		_ = core.Close()
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	// Restore before serving so no request sees an undecided session.
	restored := core.Session.Initialize(ctx)
	slog.Info("session initialized", "status", restored.Status.String(), "username", restored.Username())

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(core.Bus, func() event.Event {
		s := core.Session.State().Public()
		return event.New(event.TypeSessionRestored, s.Username(), s)
	})
	go hub.Run(hubCtx)

	presenter := handler.NewPresenter(views, core.Session)
	appRouter := router.New(cfg, core.Session, router.Handlers{
		Presenter: presenter,
		Auth:      handler.NewAuthHandler(core.Session, presenter),
		Screens:   handler.NewScreenHandler(core.Gateway, presenter),
		Users:     handler.NewUserHandler(core.Session, core.Gateway.Users, presenter),
		QR:        handler.NewQRHandler(core.Gateway.Scan, presenter),
		Session:   hub.ServeWS,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.ConsoleHost, cfg.ConsolePort),
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		core:   core,
		cleanupFuncs: []func(){
			hubCancel,
			func() {
				if err := core.Close(); err != nil {
					slog.Warn("closing session storage failed", "error", err)
				}
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("console starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("console failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("console stopped")
	return nil
}
