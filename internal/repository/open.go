package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgo/lending/internal/config"
	"github.com/forgo/lending/internal/database"
	"github.com/forgo/lending/internal/service"
)

// Stores bundles the book and reservation stores of one backend
type Stores struct {
	Books        service.BookStore
	Reservations service.ReservationStore
	close        func() error
}

// Close releases the backend connection, if any
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the configured backend, migrates its schema and returns
// the stores. A positive BookCacheSize puts an LRU in front of the book store.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Store.BookCacheSize > 0 {
		cached, err := NewCachedBookRepository(stores.Books, cfg.Store.BookCacheSize)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		stores.Books = cached
	}

	slog.Info("stores ready",
		slog.String("backend", cfg.Store.Backend),
		slog.Int("book_cache_size", cfg.Store.BookCacheSize),
	)
	return stores, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return &Stores{
			Books:        NewMemoryBookRepository(),
			Reservations: NewMemoryReservationRepository(),
		}, nil

	case config.BackendSQLite, config.BackendPostgres:
		sqlCfg := database.SQLConfig{Driver: database.DriverSQLite, DSN: cfg.Store.SQLitePath}
		if cfg.Store.Backend == config.BackendPostgres {
			sqlCfg = database.SQLConfig{Driver: cfg.Store.PostgresDriver, DSN: cfg.Store.PostgresDSN}
		}
		db, err := database.OpenSQL(ctx, sqlCfg)
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Stores{
			Books:        NewSQLBookRepository(db),
			Reservations: NewSQLReservationRepository(db),
			close:        db.Close,
		}, nil

	case config.BackendSurreal:
		db := database.NewSurrealDB(database.Config{
			Host:      cfg.Database.Host,
			Port:      cfg.Database.Port,
			User:      cfg.Database.User,
			Password:  cfg.Database.Password,
			Namespace: cfg.Database.Namespace,
			Database:  cfg.Database.Database,
		})
		if err := db.Connect(ctx); err != nil {
			return nil, err
		}
		if err := MigrateSurreal(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Stores{
			Books:        NewSurrealBookRepository(db),
			Reservations: NewSurrealReservationRepository(db),
			close:        db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
