package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
)

// Deps are the stores and settings the backend is built from.
type Deps struct {
	Integrations IntegrationStore
	Jobs         job.Repository
	Tenders      TenderStore
	Log          logger.Interface
	// APIKey, when set, is required as X-API-Key on every /api request.
	APIKey string
	// Registry receives the HTTP metrics and backs /metrics. Nil uses a
	// private registry.
	Registry *prometheus.Registry
}

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(d Deps) http.Handler {
	return newMux(d)
}

func newMux(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	h := &handler{
		integrations: d.Integrations,
		jobs:         d.Jobs,
		tenders:      d.Tenders,
		log:          d.Log,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/integrations", h.listIntegrations)
	mux.HandleFunc("POST /api/integrations", h.upsertIntegration)
	mux.HandleFunc("GET /api/integrations/{origin}", h.getIntegration)

	mux.HandleFunc("POST /api/scraper_api/jobs", h.createJob)
	mux.HandleFunc("GET /api/scraper_api/jobs", h.listJobs)
	mux.HandleFunc("GET /api/scraper_api/jobs/{id}", h.getJob)
	mux.HandleFunc("PATCH /api/scraper_api/jobs/{id}", h.updateJob)
	mux.HandleFunc("DELETE /api/scraper_api/jobs/{id}", h.deleteJob)

	mux.HandleFunc("POST /api/scraper_api/tenders/batch", h.submitBatch)
	mux.HandleFunc("POST /api/scraper_api/tenders/archived", h.submitArchived)

	// Apply middleware stack: recovery -> requestID -> logging -> apiKey
	var handler http.Handler = mux
	handler = apiKey(d.APIKey, handler)
	handler = logging(d.Log, newMetrics(d.Registry), handler)
	handler = requestID(handler)
	handler = recovery(d.Log, handler)

	return handler
}
