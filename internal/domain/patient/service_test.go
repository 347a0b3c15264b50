package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ehr/patientlist/internal/platform/metrics"
)

type failingRepo struct{}

func (failingRepo) All(context.Context) ([]Patient, error) {
	return nil, errors.New("storage offline")
}

func (failingRepo) GetByID(context.Context, string) (*Patient, error) {
	return nil, errors.New("storage offline")
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService() *Service {
	repo, err := NewMemoryRepo(SeedPatients())
	if err != nil {
		panic(err)
	}
	return NewService(repo, WithClock(fixedClock))
}

func TestService_SearchPatients(t *testing.T) {
	svc := newTestService()

	page, total, err := svc.SearchPatients(context.Background(), Query{Count: 2, Sort: SortAge})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if got := ids(page); got != "005,002" {
		t.Errorf("expected youngest first, got %q", got)
	}
}

func TestService_SearchPatients_RepoError(t *testing.T) {
	svc := NewService(failingRepo{})
	_, _, err := svc.SearchPatients(context.Background(), Query{Count: 10})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestService_SearchPatients_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	repo, _ := NewMemoryRepo(SeedPatients())
	svc := NewService(repo, WithClock(fixedClock), WithMetrics(m))
	_, _, _ = svc.SearchPatients(context.Background(), Query{Count: 10})
	_, _, _ = svc.SearchPatients(context.Background(), Query{Count: 10, Gender: "female"})

	if got := testutil.ToFloat64(m.SearchRequests.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok searches, got %v", got)
	}

	failing := NewService(failingRepo{}, WithMetrics(m))
	_, _, _ = failing.SearchPatients(context.Background(), Query{Count: 10})
	if got := testutil.ToFloat64(m.SearchRequests.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed search, got %v", got)
	}
}

func TestService_GetPatient(t *testing.T) {
	svc := newTestService()

	p, err := svc.GetPatient(context.Background(), "patient-004")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName() != "Maria Garcia" {
		t.Errorf("expected Maria Garcia, got %s", p.FullName())
	}

	if _, err := svc.GetPatient(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
