package scraper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
)

func jobFilter() job.Filter { return job.Filter{} }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b.example", nil)
	r.Register("a.example", nil)

	assert.Equal(t, []string{"a.example", "b.example"}, r.Origins())
	_, err := r.Get("c.example")
	assert.Error(t, err)
}

func TestPool_RunsEveryOriginInOrder(t *testing.T) {
	o, _ := newTestOrchestrator(time.Second)
	var calls atomic.Int64

	reg := NewRegistry()
	reg.Register("example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		calls.Add(1)
		return job.Stats{NewRecords: 1}, nil
	})
	reg.Register("inactive.example", func(context.Context, integration.Integration, API) (job.Stats, error) {
		calls.Add(1)
		return job.Stats{}, nil
	})

	pool := NewPool(o, reg, 3, nil)
	out := pool.Run(context.Background(), "inactive.example", "example.com", "unregistered.example")
	require.Len(t, out, 3)

	assert.Equal(t, "inactive.example", out[0].Origin)
	assert.Equal(t, CategoryInactive, Classify(out[0].Err))

	assert.Equal(t, "example.com", out[1].Origin)
	require.NoError(t, out[1].Err)
	assert.Equal(t, job.StatusCompleted, out[1].Result.Job.Status)

	assert.Error(t, out[2].Err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestPool_DefaultsToRegisteredOrigins(t *testing.T) {
	o, _ := newTestOrchestrator(time.Second)
	reg := NewRegistry()
	reg.Register("example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		return job.Stats{}, nil
	})

	out := NewPool(o, reg, 0, nil).Run(context.Background())
	require.Len(t, out, 1)
	assert.NoError(t, out[0].Err)
}

func TestPool_CancelledContextSkipsPendingOrigins(t *testing.T) {
	o, _ := newTestOrchestrator(time.Second)
	reg := NewRegistry()
	reg.Register("example.com", func(context.Context, integration.Integration, API) (job.Stats, error) {
		return job.Stats{}, errors.New("unreachable")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := NewPool(o, reg, 1, nil).Run(ctx, "example.com")
	require.Len(t, out, 1)
	assert.ErrorIs(t, out[0].Err, context.Canceled)
}
