package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/ehr/patientlist/internal/platform/metrics"
)

type Service struct {
	repo    Repository
	now     func() time.Time
	metrics *metrics.Metrics
}

type ServiceOption func(*Service)

// WithClock overrides the clock used for age-based sorting.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchPatients runs q against the current snapshot and returns the page
// plus the total number of matches.
func (s *Service) SearchPatients(ctx context.Context, q Query) ([]Patient, int, error) {
	start := time.Now()
	records, err := s.repo.All(ctx)
	if err != nil {
		err = fmt.Errorf("list patients: %w", err)
		s.metrics.ObserveSearch(time.Since(start), 0, err)
		return nil, 0, err
	}
	total, page := Execute(records, q, s.now())
	s.metrics.ObserveSearch(time.Since(start), total, nil)
	return page, total, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}
