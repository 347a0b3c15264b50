package main

import (
	"context"
	"fmt"

	"github.com/ehr/patientlist/internal/config"
	"github.com/ehr/patientlist/internal/domain/patient"
	"github.com/ehr/patientlist/internal/platform/db"
)

// store is an opened record source plus whatever must be released with it.
type store struct {
	source patient.Source
	// pinger is set for sources backed by a network database.
	pinger db.Pinger
	close  func()
}

// openStore opens the configured record source. Postgres schemas are
// migrated on open so serve and seed work against a fresh database.
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.RecordSource {
	case config.SourcePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		if _, err := db.NewMigrator(pool, db.Migrations()).Up(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &store{source: patient.NewPGSource(pool), pinger: pool, close: pool.Close}, nil

	case config.SourceSQLite:
		src, err := patient.OpenSQLiteSource(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{source: src, close: func() { _ = src.Close() }}, nil

	default:
		return &store{source: patient.StaticSource{}, close: func() {}}, nil
	}
}
