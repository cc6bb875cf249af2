// Package job models scraper jobs and exposes the backend job accessors.
package job

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusFailed, StatusCancelled},
	StatusRunning: {StatusCompleted, StatusFailed, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransition reports whether a job in s may move to next. Repeating the
// current status is allowed so a retried update stays idempotent.
func (s Status) CanTransition(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IntegrationRef is the integration summary embedded in job payloads.
type IntegrationRef struct {
	ID     int64   `json:"id"`
	Origin string  `json:"website_origin"`
	Name   *string `json:"website_name"`
}

type Job struct {
	ID              int64           `json:"id"`
	IntegrationID   int64           `json:"integration_id"`
	Status          Status          `json:"status"`
	StartedAt       *time.Time      `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at"`
	Duration        *int64          `json:"duration"`
	NewRecords      int64           `json:"new_records"`
	UpdatedRecords  int64           `json:"updated_records"`
	ArchivedRecords int64           `json:"archived_records"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Integration     *IntegrationRef `json:"integration,omitempty"`
}

// Stats are the counters a scraping run reports when it finishes.
type Stats struct {
	NewRecords      int64 `json:"new_records"`
	UpdatedRecords  int64 `json:"updated_records"`
	ArchivedRecords int64 `json:"archived_records"`
}
