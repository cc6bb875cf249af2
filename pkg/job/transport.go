package job

import (
	"net/url"
	"strconv"
	"time"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
)

type CreateRequest struct {
	Origin          string     `json:"website_origin"`
	Status          Status     `json:"status,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Duration        *int64     `json:"duration,omitempty"`
	NewRecords      *int64     `json:"new_records,omitempty"`
	UpdatedRecords  *int64     `json:"updated_records,omitempty"`
	ArchivedRecords *int64     `json:"archived_records,omitempty"`
}

func (r CreateRequest) Validate() *apperror.AppError {
	if r.Origin == "" {
		return apperror.New(apperror.Validation, "website origin is required")
	}
	if r.Status != "" && !r.Status.Valid() {
		return apperror.New(apperror.Validation, "invalid job status: "+string(r.Status))
	}
	return nil
}

// Update is a partial update: nil fields are left untouched by the backend.
type Update struct {
	Status          *Status    `json:"status,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Duration        *int64     `json:"duration,omitempty"`
	NewRecords      *int64     `json:"new_records,omitempty"`
	UpdatedRecords  *int64     `json:"updated_records,omitempty"`
	ArchivedRecords *int64     `json:"archived_records,omitempty"`
}

func (u Update) Validate() *apperror.AppError {
	if u.Status != nil && !u.Status.Valid() {
		return apperror.New(apperror.Validation, "invalid job status: "+string(*u.Status))
	}
	for _, n := range []*int64{u.Duration, u.NewRecords, u.UpdatedRecords, u.ArchivedRecords} {
		if n != nil && *n < 0 {
			return apperror.New(apperror.Validation, "job counters and duration must be non-negative")
		}
	}
	if u.StartedAt != nil && u.FinishedAt != nil && u.FinishedAt.Before(*u.StartedAt) {
		return apperror.New(apperror.Validation, "finished_at is before started_at")
	}
	return nil
}

// Apply copies the supplied fields onto j.
func (u Update) Apply(j *Job) {
	if u.Status != nil {
		j.Status = *u.Status
	}
	if u.StartedAt != nil {
		j.StartedAt = u.StartedAt
	}
	if u.FinishedAt != nil {
		j.FinishedAt = u.FinishedAt
	}
	if u.Duration != nil {
		j.Duration = u.Duration
	}
	if u.NewRecords != nil {
		j.NewRecords = *u.NewRecords
	}
	if u.UpdatedRecords != nil {
		j.UpdatedRecords = *u.UpdatedRecords
	}
	if u.ArchivedRecords != nil {
		j.ArchivedRecords = *u.ArchivedRecords
	}
}

// Metrics completes a job. StartedAt, FinishedAt and Duration are optional;
// FinishedAt defaults to now.
type Metrics struct {
	Stats
	StartedAt  *time.Time
	FinishedAt *time.Time
	Duration   *int64
}

type GetJobRequest struct {
	ID int64
}

func (r GetJobRequest) Validate() *apperror.AppError {
	if r.ID <= 0 {
		return apperror.New(apperror.Validation, "invalid job id")
	}
	return nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Origin string
	Status Status
}

func (f Filter) Validate() *apperror.AppError {
	if f.Status != "" && !f.Status.Valid() {
		return apperror.New(apperror.Validation, "invalid job status: "+string(f.Status))
	}
	return nil
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if f.Origin != "" {
		q.Set("website_origin", f.Origin)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	return q
}

func idPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
