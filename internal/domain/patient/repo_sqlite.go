package patient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS patient_resource (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	resource BLOB NOT NULL
)`

// SQLiteSource stores the seed dataset as JSON blobs in a single SQLite table.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens (creating if needed) the database at path.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	if path == "" {
		path = "patients.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create patient_resource: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Load(ctx context.Context) ([]Patient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT resource FROM patient_resource ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("select patients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patients []Patient
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var p Patient
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode patient resource: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (s *SQLiteSource) Seed(ctx context.Context, records []Patient) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for i, p := range records {
		raw, err := json.Marshal(p.ToFHIR())
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO patient_resource (id, position, resource) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET position = excluded.position, resource = excluded.resource`,
			p.ID, i, raw); err != nil {
			return fmt.Errorf("upsert %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}
