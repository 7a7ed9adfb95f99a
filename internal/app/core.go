package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"kiva-console/internal/config"
	"kiva-console/internal/database"
	"kiva-console/internal/event"
	"kiva-console/internal/gateway"
	"kiva-console/internal/session"
	"kiva-console/internal/storage"
	"kiva-console/internal/tokenstore"
)

// Core is the part of the composition shared by the console and kivactl:
// durable storage, the token store, the backend gateway and the one session
// manager that owns authentication state.
type Core struct {
	Storage storage.Storage
	Tokens  *tokenstore.Store
	Gateway *gateway.Gateway
	Bus     *event.InMemoryBus
	Session *session.Manager
}

func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens := tokenstore.New(store)
	gw := gateway.New(cfg.APIBaseURL, tokens, gateway.Options{
		Timeout:      cfg.APITimeout,
		RateLimitRPS: cfg.APIRateLimitRPS,
	})
	bus := event.NewBus()

	manager := session.NewManager(gw.Auth, tokens, session.Options{
		LoginTimeout:   cfg.LoginTimeout,
		RestoreTimeout: cfg.RestoreTimeout,
		LogoutTimeout:  cfg.APITimeout,
		Bus:            bus,
	})

	return &Core{
		Storage: store,
		Tokens:  tokens,
		Gateway: gw,
		Bus:     bus,
		Session: manager,
	}, nil
}

func (c *Core) Close() error {
	return c.Storage.Close()
}

// OpenStorage opens the backend named by STORAGE_DRIVER.
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		slog.Warn("using in-memory session storage; the session will not survive a restart")
		return storage.NewMemory(), nil

	case config.StorageDriverFile:
		var sealer *storage.Sealer
		if cfg.StorageKey != "" {
			s, err := storage.NewSealer(cfg.StorageKey)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize storage sealing: %w", err)
			}
			sealer = s
		}
		store, err := storage.NewFile(cfg.StoragePath, sealer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		slog.Info("session storage ready", "driver", cfg.StorageDriver, "path", cfg.StoragePath, "sealed", sealer != nil)
		return store, nil

	case config.StorageDriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		slog.Info("session storage ready", "driver", cfg.StorageDriver, "path", cfg.StoragePath)
		return storage.NewSQLite(db), nil

	case config.StorageDriverPostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		namespace := cfg.StorageNamespace
		if namespace == "" {
			namespace, _ = os.Hostname()
		}
		slog.Info("session storage ready", "driver", cfg.StorageDriver, "namespace", namespace)
		return storage.NewPostgres(db.Pool, namespace, db.Close), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
