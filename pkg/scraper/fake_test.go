package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

// fakeBackend is an in-memory API: integrations by origin and a job table
// whose transitions follow job.Status.CanTransition.
type fakeBackend struct {
	mu           sync.Mutex
	integrations map[string]integration.Integration
	jobs         map[int64]*job.Job
	nextID       int64
	now          func() time.Time

	createErr   error
	startErr    error
	completeErr error
	failErr     error

	failCalls     int
	completeCalls int
	lastMetrics   job.Metrics
}

func newFakeBackend(now func() time.Time) *fakeBackend {
	return &fakeBackend{
		integrations: map[string]integration.Integration{
			"example.com":      {ID: 7, Origin: "example.com", IsActive: true},
			"inactive.example": {ID: 8, Origin: "inactive.example", IsActive: false},
		},
		jobs:   make(map[int64]*job.Job),
		nextID: 1,
		now:    now,
	}
}

func (f *fakeBackend) Jobs() JobAPI                 { return fakeJobs{f} }
func (f *fakeBackend) Integrations() IntegrationAPI { return fakeIntegrations{f} }
func (f *fakeBackend) Tenders() TenderAPI           { return nil }

func (f *fakeBackend) jobCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func (f *fakeBackend) jobByID(id int64) job.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.jobs[id]
}

type fakeIntegrations struct{ f *fakeBackend }

func (fi fakeIntegrations) List(context.Context) ([]integration.Integration, error) {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	out := make([]integration.Integration, 0, len(fi.f.integrations))
	for _, in := range fi.f.integrations {
		out = append(out, in)
	}
	return out, nil
}

func (fi fakeIntegrations) GetByOrigin(_ context.Context, origin string) (*integration.Integration, error) {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	in, ok := fi.f.integrations[origin]
	if !ok {
		return nil, integration.NotFoundError(origin)
	}
	if !in.IsActive {
		return nil, integration.InactiveError(origin)
	}
	return &in, nil
}

type fakeJobs struct{ f *fakeBackend }

func (fj fakeJobs) Create(_ context.Context, req job.CreateRequest) (*job.Job, error) {
	f := fj.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	in := f.integrations[req.Origin]
	j := &job.Job{ID: f.nextID, IntegrationID: in.ID, Status: job.StatusPending, CreatedAt: f.now()}
	f.nextID++
	f.jobs[j.ID] = j
	cp := *j
	return &cp, nil
}

func (fj fakeJobs) List(context.Context, job.Filter) ([]job.Job, error) {
	f := fj.f
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]job.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (fj fakeJobs) Get(_ context.Context, id int64) (*job.Job, error) {
	f := fj.f
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "job not found")
	}
	cp := *j
	return &cp, nil
}

func (fj fakeJobs) Update(_ context.Context, id int64, u job.Update) (*job.Job, error) {
	f := fj.f
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "job not found")
	}
	if u.Status != nil && !j.Status.CanTransition(*u.Status) {
		return nil, apperror.New(apperror.Conflict, "illegal transition")
	}
	u.Apply(j)
	cp := *j
	return &cp, nil
}

func (fj fakeJobs) Delete(_ context.Context, id int64) (*transport.Ack, error) {
	f := fj.f
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
	return &transport.Ack{Success: true}, nil
}

func (fj fakeJobs) Start(ctx context.Context, id int64) (*job.Job, error) {
	if err := fj.f.startErr; err != nil {
		return nil, err
	}
	now := fj.f.now()
	s := job.StatusRunning
	return fj.Update(ctx, id, job.Update{Status: &s, StartedAt: &now})
}

func (fj fakeJobs) Complete(ctx context.Context, id int64, m job.Metrics) (*job.Job, error) {
	fj.f.mu.Lock()
	fj.f.completeCalls++
	fj.f.lastMetrics = m
	err := fj.f.completeErr
	fj.f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := job.StatusCompleted
	return fj.Update(ctx, id, job.Update{
		Status:          &s,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
		Duration:        m.Duration,
		NewRecords:      &m.NewRecords,
		UpdatedRecords:  &m.UpdatedRecords,
		ArchivedRecords: &m.ArchivedRecords,
	})
}

func (fj fakeJobs) Fail(ctx context.Context, id int64) (*job.Job, error) {
	fj.f.mu.Lock()
	fj.f.failCalls++
	err := fj.f.failErr
	fj.f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	now := fj.f.now()
	s := job.StatusFailed
	return fj.Update(ctx, id, job.Update{Status: &s, FinishedAt: &now})
}

func (fj fakeJobs) Cancel(ctx context.Context, id int64) (*job.Job, error) {
	now := fj.f.now()
	s := job.StatusCancelled
	return fj.Update(ctx, id, job.Update{Status: &s, FinishedAt: &now})
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}
