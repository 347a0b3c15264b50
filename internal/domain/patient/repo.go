package patient

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("patient not found")

// Repository is a read-only view over the seeded patient records.
type Repository interface {
	// All returns every record in seed order.
	All(ctx context.Context) ([]Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
}

// MemoryRepo is an immutable in-memory snapshot. It is safe for concurrent
// readers because nothing mutates it after construction.
type MemoryRepo struct {
	records []Patient
	byID    map[string]int
}

// NewMemoryRepo builds a snapshot from records. Ids must be non-empty and
// unique.
func NewMemoryRepo(records []Patient) (*MemoryRepo, error) {
	r := &MemoryRepo{
		records: make([]Patient, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	for i, p := range records {
		if p.ID == "" {
			return nil, fmt.Errorf("record %d: id is required", i)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, p.ID)
		}
		r.byID[p.ID] = i
		r.records[i] = p.ToFHIR()
	}
	return r, nil
}

// All returns a copy of the record slice; the records themselves are shared
// and must be treated as read-only.
func (r *MemoryRepo) All(_ context.Context) ([]Patient, error) {
	out := make([]Patient, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := r.records[i]
	return &p, nil
}

// Len reports the number of records in the snapshot.
func (r *MemoryRepo) Len() int {
	return len(r.records)
}

// Source loads the seed records at startup and can write them back for
// provisioning. Sources are only read once; the served snapshot lives in a
// MemoryRepo.
type Source interface {
	Load(ctx context.Context) ([]Patient, error)
	Seed(ctx context.Context, records []Patient) error
}

// StaticSource serves the built-in dataset.
type StaticSource struct{}

func (StaticSource) Load(_ context.Context) ([]Patient, error) {
	return SeedPatients(), nil
}

func (StaticSource) Seed(_ context.Context, _ []Patient) error {
	return fmt.Errorf("static source is read-only")
}

// LoadRepo reads every record from src into an in-memory snapshot.
func LoadRepo(ctx context.Context, src Source) (*MemoryRepo, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	return NewMemoryRepo(records)
}
