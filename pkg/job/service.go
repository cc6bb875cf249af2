package job

import (
	"context"
	"net/url"
	"time"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

const basePath = "/api/scraper_api/jobs"

// Doer is the slice of the request executor the job accessors need.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Service struct {
	client Doer
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for the timestamps Start, Complete, Fail and
// Cancel stamp on the job.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(client Doer, opts ...Option) *Service {
	s := &Service{client: client, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out Job
	if err := s.client.Post(ctx, basePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Job, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []Job
	if err := s.client.Get(ctx, basePath, f.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Job, error) {
	if err := (GetJobRequest{ID: id}).Validate(); err != nil {
		return nil, err
	}
	var out Job
	if err := s.client.Get(ctx, idPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends only the fields set on u.
func (s *Service) Update(ctx context.Context, id int64, u Update) (*Job, error) {
	if err := (GetJobRequest{ID: id}).Validate(); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var out Job
	if err := s.client.Patch(ctx, idPath(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*transport.Ack, error) {
	if err := (GetJobRequest{ID: id}).Validate(); err != nil {
		return nil, err
	}
	var out transport.Ack
	if err := s.client.Delete(ctx, idPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Start moves the job to running and stamps started_at.
func (s *Service) Start(ctx context.Context, id int64) (*Job, error) {
	now := s.now()
	return s.Update(ctx, id, Update{Status: ptr(StatusRunning), StartedAt: &now})
}

// Complete moves the job to completed with the run's counters. FinishedAt
// defaults to now when m leaves it unset.
func (s *Service) Complete(ctx context.Context, id int64, m Metrics) (*Job, error) {
	finished := m.FinishedAt
	if finished == nil {
		now := s.now()
		finished = &now
	}
	if m.NewRecords < 0 || m.UpdatedRecords < 0 || m.ArchivedRecords < 0 {
		return nil, apperror.New(apperror.Validation, "job counters must be non-negative")
	}
	return s.Update(ctx, id, Update{
		Status:          ptr(StatusCompleted),
		StartedAt:       m.StartedAt,
		FinishedAt:      finished,
		Duration:        m.Duration,
		NewRecords:      ptr(m.NewRecords),
		UpdatedRecords:  ptr(m.UpdatedRecords),
		ArchivedRecords: ptr(m.ArchivedRecords),
	})
}

func (s *Service) Fail(ctx context.Context, id int64) (*Job, error) {
	return s.finish(ctx, id, StatusFailed)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*Job, error) {
	return s.finish(ctx, id, StatusCancelled)
}

func (s *Service) finish(ctx context.Context, id int64, status Status) (*Job, error) {
	now := s.now()
	return s.Update(ctx, id, Update{Status: &status, FinishedAt: &now})
}

func ptr[T any](v T) *T { return &v }
