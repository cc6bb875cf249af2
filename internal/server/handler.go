package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

// IntegrationStore persists integrations.
type IntegrationStore interface {
	List(ctx context.Context) ([]integration.Integration, error)
	GetByOrigin(ctx context.Context, origin string) (*integration.Integration, error)
	Upsert(ctx context.Context, in *integration.Integration) error
}

// TenderStore persists submitted tenders.
type TenderStore interface {
	Upsert(ctx context.Context, origin string, items []tender.Item) (tender.Stats, error)
	Archive(ctx context.Context, origin string, items []tender.Item) (int64, error)
}

type handler struct {
	integrations IntegrationStore
	jobs         job.Repository
	tenders      TenderStore
	log          logger.Interface
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.integrations.List(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getIntegration(w http.ResponseWriter, r *http.Request) {
	in, err := h.integrations.GetByOrigin(r.Context(), r.PathValue("origin"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *handler) upsertIntegration(w http.ResponseWriter, r *http.Request) {
	var in integration.Integration
	if !decodeBody(w, r, &in) {
		return
	}
	if err := h.integrations.Upsert(r.Context(), &in); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// activeIntegration resolves origin and refuses inactive integrations.
func (h *handler) activeIntegration(ctx context.Context, origin string) (*integration.Integration, error) {
	in, err := h.integrations.GetByOrigin(ctx, origin)
	if err != nil {
		return nil, err
	}
	if !in.IsActive {
		return nil, integration.InactiveError(origin)
	}
	return in, nil
}

func (h *handler) createJob(w http.ResponseWriter, r *http.Request) {
	var req job.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}
	if req.Status != "" && req.Status != job.StatusPending {
		writeError(w, http.StatusConflict, "new jobs must start pending")
		return
	}

	in, err := h.activeIntegration(r.Context(), req.Origin)
	if err != nil {
		writeAppError(w, err)
		return
	}

	j := &job.Job{IntegrationID: in.ID, Status: job.StatusPending}
	job.Update{
		StartedAt:       req.StartedAt,
		FinishedAt:      req.FinishedAt,
		Duration:        req.Duration,
		NewRecords:      req.NewRecords,
		UpdatedRecords:  req.UpdatedRecords,
		ArchivedRecords: req.ArchivedRecords,
	}.Apply(j)

	if err := h.jobs.Create(r.Context(), j); err != nil {
		writeAppError(w, err)
		return
	}
	j.Integration = &job.IntegrationRef{ID: in.ID, Origin: in.Origin, Name: in.Name}
	writeJSON(w, http.StatusCreated, j)
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	f := job.Filter{
		Origin: r.URL.Query().Get("website_origin"),
		Status: job.Status(r.URL.Query().Get("status")),
	}
	if appErr := f.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}
	jobs, err := h.jobs.List(r.Context(), f)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return 0, false
	}
	if appErr := (job.GetJobRequest{ID: id}).Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return 0, false
	}
	return id, true
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	j, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// updateJob applies a partial update. Status changes must follow
// job.Status.CanTransition; anything else is a 409.
func (h *handler) updateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var u job.Update
	if !decodeBody(w, r, &u) {
		return
	}
	if appErr := u.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}

	j, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if u.Status != nil && !j.Status.CanTransition(*u.Status) {
		writeAppError(w, apperror.New(apperror.Conflict,
			"illegal job transition: "+string(j.Status)+" -> "+string(*u.Status)))
		return
	}

	u.Apply(j)
	if err := h.jobs.Update(r.Context(), j); err != nil {
		writeAppError(w, err)
		return
	}
	h.log.Debug("job updated", "job", id, "status", j.Status)
	writeJSON(w, http.StatusOK, j)
}

func (h *handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if err := h.jobs.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transport.Ack{Success: true, Message: "job deleted"})
}

func (h *handler) submitBatch(w http.ResponseWriter, r *http.Request) {
	var req tender.SubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}
	if _, err := h.activeIntegration(r.Context(), req.WebsiteOrigin); err != nil {
		writeAppError(w, err)
		return
	}

	stats, err := h.tenders.Upsert(r.Context(), req.WebsiteOrigin, req.Data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	h.log.Info("tender batch stored", "origin", req.WebsiteOrigin, "items", len(req.Data), "new", stats.New, "updated", stats.Updated)
	writeJSON(w, http.StatusOK, tender.BatchResponse{Stats: stats})
}

func (h *handler) submitArchived(w http.ResponseWriter, r *http.Request) {
	var req tender.SubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}
	if _, err := h.activeIntegration(r.Context(), req.WebsiteOrigin); err != nil {
		writeAppError(w, err)
		return
	}

	n, err := h.tenders.Archive(r.Context(), req.WebsiteOrigin, req.Data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transport.Ack{Success: true, Message: strconv.FormatInt(n, 10) + " tenders archived"})
}
