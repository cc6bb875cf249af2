package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
)

// Work performs one scraping run for an integration and reports its counters.
type Work func(ctx context.Context, in integration.Integration, api API) (job.Stats, error)

type Result struct {
	JobID    int64     `json:"jobId"`
	Job      *job.Job  `json:"job"`
	Stats    job.Stats `json:"stats"`
	Duration int64     `json:"duration"` // whole seconds
}

const (
	CategoryNotFound = "integration_not_found"
	CategoryInactive = "integration_inactive"
	CategoryFailed   = "failed"
)

// Classify names the failure category of a Run error for diagnostics.
func Classify(err error) string {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		switch {
		case ae.Code() == apperror.NotFound && strings.HasPrefix(ae.Message(), "Integration not found"):
			return CategoryNotFound
		case ae.Code() == apperror.Inactive:
			return CategoryInactive
		}
	}
	return CategoryFailed
}

// Orchestrator runs work inside a backend job: it resolves the integration,
// opens and starts a job, then completes it with the work's counters or
// marks it failed.
type Orchestrator struct {
	api API
	log logger.Interface
	now func() time.Time
}

func NewOrchestrator(api API, log logger.Interface, now func() time.Time) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{api: api, log: log, now: now}
}

// Run executes work for origin. Whatever happens after the job is created,
// the job ends completed or failed unless marking it failed itself fails,
// which is logged. The returned error is always the original one.
func (o *Orchestrator) Run(ctx context.Context, origin string, work Work) (*Result, error) {
	log := o.log.With("origin", origin)

	in, err := o.api.Integrations().GetByOrigin(ctx, origin)
	if err != nil {
		report(log, err)
		return nil, err
	}
	log.Debug("integration resolved", "integration", in.ID, "name", in.DisplayName(), "active", in.IsActive)

	created, err := o.api.Jobs().Create(ctx, job.CreateRequest{Origin: origin})
	if err != nil {
		report(log, err)
		return nil, err
	}
	id := created.ID
	log = log.With("job", id)

	defer func() {
		if p := recover(); p != nil {
			o.fail(ctx, log, id)
			report(log, apperror.New(apperror.Internal, fmt.Sprintf("work panicked: %v", p)))
			panic(p)
		}
	}()

	started := o.now()
	if _, err := o.api.Jobs().Start(ctx, id); err != nil {
		return nil, o.abort(ctx, log, id, err)
	}
	log.Debug("job started")

	stats, err := work(ctx, *in, o.api)
	if err != nil {
		return nil, o.abort(ctx, log, id, err)
	}

	finished := o.now()
	duration := int64(finished.Sub(started) / time.Second)
	done, err := o.api.Jobs().Complete(ctx, id, job.Metrics{
		Stats:      stats,
		StartedAt:  &started,
		FinishedAt: &finished,
		Duration:   &duration,
	})
	if err != nil {
		return nil, o.abort(ctx, log, id, err)
	}

	log.Info("job completed",
		"duration", duration,
		"new", stats.NewRecords,
		"updated", stats.UpdatedRecords,
		"archived", stats.ArchivedRecords,
	)
	return &Result{JobID: id, Job: done, Stats: stats, Duration: duration}, nil
}

func (o *Orchestrator) abort(ctx context.Context, log logger.Interface, id int64, err error) error {
	o.fail(ctx, log, id)
	report(log, err)
	return err
}

// fail marks the job failed. It runs on a context detached from the
// caller's cancellation so a cancelled run still gets closed.
func (o *Orchestrator) fail(ctx context.Context, log logger.Interface, id int64) {
	if _, err := o.api.Jobs().Fail(context.WithoutCancel(ctx), id); err != nil {
		log.Error("failed to mark job as failed", "error", err)
		return
	}
	log.Debug("job marked failed")
}

func report(log logger.Interface, err error) {
	switch cat := Classify(err); cat {
	case CategoryNotFound:
		log.Error("integration not found", "category", cat, "error", err)
	case CategoryInactive:
		log.Error("integration inactive", "category", cat, "error", err)
	default:
		log.Error("scraping failed", "category", cat, "error", err)
	}
}
