package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func fixed() time.Time { return t0 }

func newTestOrchestrator(step time.Duration) (*Orchestrator, *fakeBackend) {
	backend := newFakeBackend(fixed)
	clock := &stepClock{t: t0, step: step}
	return NewOrchestrator(backend, nil, clock.now), backend
}

func TestRun_CompletesJob(t *testing.T) {
	o, backend := newTestOrchestrator(2500 * time.Millisecond)

	var seen integration.Integration
	res, err := o.Run(context.Background(), "example.com", func(_ context.Context, in integration.Integration, api API) (job.Stats, error) {
		seen = in
		assert.NotNil(t, api.Jobs())
		return job.Stats{NewRecords: 5}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), seen.ID)
	assert.Equal(t, int64(1), res.JobID)
	assert.Equal(t, job.StatusCompleted, res.Job.Status)
	assert.Equal(t, int64(5), res.Stats.NewRecords)
	assert.Equal(t, int64(2), res.Duration, "2.5s floors to 2")

	stored := backend.jobByID(res.JobID)
	assert.Equal(t, job.StatusCompleted, stored.Status)
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.FinishedAt)
	require.NotNil(t, stored.Duration)
	assert.Equal(t, int64(stored.FinishedAt.Sub(*stored.StartedAt)/time.Second), *stored.Duration)
	assert.Equal(t, int64(5), stored.NewRecords)
	assert.Zero(t, backend.failCalls)
}

func TestRun_WorkFailureFailsJobOnce(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	boom := errors.New("site layout changed")

	res, err := o.Run(context.Background(), "example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		return job.Stats{}, boom
	})
	assert.Nil(t, res)
	assert.Same(t, boom, err)
	assert.Equal(t, 1, backend.failCalls)
	assert.Equal(t, job.StatusFailed, backend.jobByID(1).Status)
	assert.Zero(t, backend.completeCalls)
}

func TestRun_FailTransitionErrorIsNotReturned(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	backend.failErr = apperror.NewTransport("backend down", 503, nil)
	boom := errors.New("work failed")

	_, err := o.Run(context.Background(), "example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		return job.Stats{}, boom
	})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, backend.failCalls)
	assert.Equal(t, job.StatusRunning, backend.jobByID(1).Status)
}

func TestRun_InactiveIntegrationCreatesNoJob(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	before := backend.jobCount()

	called := false
	_, err := o.Run(context.Background(), "inactive.example", func(context.Context, integration.Integration, API) (job.Stats, error) {
		called = true
		return job.Stats{}, nil
	})
	assert.ErrorIs(t, err, apperror.ErrInactive)
	assert.Equal(t, CategoryInactive, Classify(err))
	assert.False(t, called)
	assert.Equal(t, before, backend.jobCount())
	assert.Zero(t, backend.failCalls)
}

func TestRun_UnknownIntegration(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)

	_, err := o.Run(context.Background(), "nowhere.example", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, CategoryNotFound, Classify(err))
	assert.Zero(t, backend.jobCount())
}

func TestRun_CreateFailureNeedsNoCleanup(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	backend.createErr = apperror.NewTransport("boom", 500, nil)

	_, err := o.Run(context.Background(), "example.com", nil)
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Zero(t, backend.failCalls)
}

func TestRun_StartFailureFailsJob(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	backend.startErr = apperror.NewTransport("boom", 500, nil)

	_, err := o.Run(context.Background(), "example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		t.Fatal("work must not run")
		return job.Stats{}, nil
	})
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Equal(t, 1, backend.failCalls)
	assert.Equal(t, job.StatusFailed, backend.jobByID(1).Status)
}

func TestRun_CompleteFailureFailsJob(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	backend.completeErr = apperror.NewTransport("gateway timeout", 504, nil)

	_, err := o.Run(context.Background(), "example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		return job.Stats{UpdatedRecords: 1}, nil
	})
	assert.Equal(t, "gateway timeout", err.Error())
	assert.Equal(t, 1, backend.completeCalls)
	assert.Equal(t, 1, backend.failCalls)
	assert.Equal(t, job.StatusFailed, backend.jobByID(1).Status)
}

func TestRun_PanicFailsJobAndRepanics(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)

	assert.PanicsWithValue(t, "nil map", func() {
		_, _ = o.Run(context.Background(), "example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
			panic("nil map")
		})
	})
	assert.Equal(t, 1, backend.failCalls)
	assert.Equal(t, job.StatusFailed, backend.jobByID(1).Status)
}

func TestRun_CancelledContextStillFailsJob(t *testing.T) {
	o, backend := newTestOrchestrator(time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := o.Run(ctx, "example.com", func(ctx context.Context, _ integration.Integration, _ API) (job.Stats, error) {
		cancel()
		return job.Stats{}, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, job.StatusFailed, backend.jobByID(1).Status)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryNotFound, Classify(integration.NotFoundError("x")))
	assert.Equal(t, CategoryInactive, Classify(integration.InactiveError("x")))
	assert.Equal(t, CategoryFailed, Classify(apperror.New(apperror.NotFound, "job not found")))
	assert.Equal(t, CategoryFailed, Classify(errors.New("boom")))
	assert.Equal(t, CategoryFailed, Classify(nil))
}
