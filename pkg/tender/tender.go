// Package tender holds the tender payload model and the batch submission
// accessors, including the chunked submission pipeline.
package tender

import (
	"encoding/json"
	"fmt"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
)

// Item is one scraped tender. Number is its natural key within an origin.
type Item struct {
	Number        string            `json:"number" db:"number"`
	Name          string            `json:"name" db:"name"`
	Documents     string            `json:"documents,omitempty" db:"documents"`
	Sum           string            `json:"sum,omitempty" db:"sum"`
	SubmissionEnd string            `json:"submission_end,omitempty" db:"submission_end"`
	BiddingBegin  string            `json:"bidding_begin,omitempty" db:"bidding_begin"`
	Customer      string            `json:"customer,omitempty" db:"customer"`
	Broker        string            `json:"broker,omitempty" db:"broker"`
	Status        string            `json:"status,omitempty" db:"status"`
	Participants  string            `json:"participants,omitempty" db:"participants"`
	BestSum       string            `json:"best_sum,omitempty" db:"best_sum"`
	DocumentURLs  []string          `json:"document_urls,omitempty" db:"-"`
	Lots          []json.RawMessage `json:"lots,omitempty" db:"-"`
}

func (it Item) Validate() *apperror.AppError {
	if it.Number == "" {
		return apperror.New(apperror.Validation, "tender number is required")
	}
	if it.Name == "" {
		return apperror.New(apperror.Validation, fmt.Sprintf("tender %s: name is required", it.Number))
	}
	return nil
}

// Stats counts the records a batch created and updated on the backend.
type Stats struct {
	New     int64 `json:"new"`
	Updated int64 `json:"updated"`
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{New: s.New + o.New, Updated: s.Updated + o.Updated}
}

// SubmitRequest is the body of the batch and archived endpoints.
type SubmitRequest struct {
	Data          []Item `json:"data"`
	WebsiteOrigin string `json:"websiteOrigin"`
}

func (r SubmitRequest) Validate() *apperror.AppError {
	if r.WebsiteOrigin == "" {
		return apperror.New(apperror.Validation, "website origin is required")
	}
	for i := range r.Data {
		if err := r.Data[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BatchResponse is what the backend answers to a batch submission.
type BatchResponse struct {
	Stats Stats `json:"stats"`
}
