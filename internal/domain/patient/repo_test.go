package patient

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestNewMemoryRepo(t *testing.T) {
	repo, err := NewMemoryRepo(SeedPatients())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() != 5 {
		t.Errorf("expected 5 records, got %d", repo.Len())
	}

	p, err := repo.GetByID(context.Background(), "patient-003")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.FullName() != "Robert Davis" {
		t.Errorf("expected Robert Davis, got %s", p.FullName())
	}
}

func TestNewMemoryRepo_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		records []Patient
	}{
		{name: "missing id", records: []Patient{{ID: ""}}},
		{name: "duplicate id", records: []Patient{{ID: "a"}, {ID: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMemoryRepo(tt.records); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMemoryRepo_SetsResourceType(t *testing.T) {
	repo, _ := NewMemoryRepo([]Patient{{ID: "bare"}})
	p, _ := repo.GetByID(context.Background(), "bare")
	if p.ResourceType != "Patient" {
		t.Errorf("expected resourceType Patient, got %q", p.ResourceType)
	}
}

func TestMemoryRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := NewMemoryRepo(SeedPatients())
	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepo_AllIsACopy(t *testing.T) {
	repo, _ := NewMemoryRepo(SeedPatients())
	all, _ := repo.All(context.Background())
	all[0] = Patient{ID: "mutated"}

	again, _ := repo.All(context.Background())
	if again[0].ID != "patient-001" {
		t.Errorf("snapshot was mutated: %s", again[0].ID)
	}
}

func TestStaticSource(t *testing.T) {
	repo, err := LoadRepo(context.Background(), StaticSource{})
	if err != nil {
		t.Fatalf("LoadRepo: %v", err)
	}
	if repo.Len() != 5 {
		t.Errorf("expected 5, got %d", repo.Len())
	}
	if err := (StaticSource{}).Seed(context.Background(), nil); err == nil {
		t.Error("expected static source to reject Seed")
	}
}

func TestSQLiteSource_SeedAndLoad(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLiteSource(filepath.Join(t.TempDir(), "nested", "patients.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	empty, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty table, got %d rows", len(empty))
	}

	if err := src.Seed(ctx, SeedPatients()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice upserts rather than duplicating.
	if err := src.Seed(ctx, SeedPatients()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	repo, err := LoadRepo(ctx, src)
	if err != nil {
		t.Fatalf("LoadRepo: %v", err)
	}
	if repo.Len() != 5 {
		t.Fatalf("expected 5 records, got %d", repo.Len())
	}
	all, _ := repo.All(ctx)
	if got := ids(all); got != "001,002,003,004,005" {
		t.Errorf("expected seed order, got %q", got)
	}
	p, _ := repo.GetByID(ctx, "patient-001")
	if p.MRN() != "MRN001" || p.BirthDate != "1985-03-15" {
		t.Errorf("round trip lost fields: %+v", p)
	}
	if p.Meta == nil || p.Meta.VersionID != "1" {
		t.Errorf("expected meta versionId 1, got %+v", p.Meta)
	}
}
