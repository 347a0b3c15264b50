package patient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUpsert = `INSERT INTO patient_resource (id, position, resource)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position, resource = EXCLUDED.resource, updated_at = now()`

// PGSource keeps the dataset in a Postgres table, one JSONB document per
// record. The table comes from the db package migrations.
type PGSource struct {
	pool *pgxpool.Pool
}

func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

func (s *PGSource) Load(ctx context.Context) ([]Patient, error) {
	rows, err := s.pool.Query(ctx, `SELECT resource FROM patient_resource ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query patient_resource: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p Patient
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode patient resource: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (s *PGSource) Seed(ctx context.Context, records []Patient) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i, p := range records {
		raw, err := json.Marshal(p.ToFHIR())
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.ID, err)
		}
		batch.Queue(pgUpsert, p.ID, i, raw)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert patients: %w", err)
	}
	return tx.Commit(ctx)
}
