package store

import (
	"context"

	"github.com/pkg/errors"

	"escola/internal/config"
	"escola/internal/students"
)

// Backend is the table selected by configuration.
type Backend struct {
	Table  students.Table
	Health interface{ Healthy(ctx context.Context) bool }
	Demo   bool
	close  func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the table named by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.App) (*Backend, error) {
	switch cfg.StoreBackend {
	case "memory", "":
		m := NewMemory(DemoStudents()...)
		return &Backend{Table: m, Health: m, Demo: true}, nil
	case "postgres":
		db, err := NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, db)
	case "sqlite":
		db, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, db)
	case "postgrest":
		if cfg.PostgRESTURL == "" {
			return nil, errors.New("POSTGREST_URL is required for the postgrest backend")
		}
		breaker := config.NewCircuitBreaker("PostgREST", students.ErrNotFound, students.ErrDuplicateCode)
		p, err := NewPostgREST(cfg.PostgRESTURL, cfg.PostgRESTAPIKey, breaker)
		if err != nil {
			return nil, err
		}
		return &Backend{Table: p, Health: p}, nil
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func sqlBackend(ctx context.Context, db *DB) (*Backend, error) {
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{Table: NewTable(db), Health: db, close: db.Close}, nil
}
