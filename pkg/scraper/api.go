package scraper

import (
	"context"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

// API is the capability set handed to work functions.
type API interface {
	Jobs() JobAPI
	Integrations() IntegrationAPI
	Tenders() TenderAPI
}

type JobAPI interface {
	Create(ctx context.Context, req job.CreateRequest) (*job.Job, error)
	List(ctx context.Context, f job.Filter) ([]job.Job, error)
	Get(ctx context.Context, id int64) (*job.Job, error)
	Update(ctx context.Context, id int64, u job.Update) (*job.Job, error)
	Delete(ctx context.Context, id int64) (*transport.Ack, error)
	Start(ctx context.Context, id int64) (*job.Job, error)
	Complete(ctx context.Context, id int64, m job.Metrics) (*job.Job, error)
	Fail(ctx context.Context, id int64) (*job.Job, error)
	Cancel(ctx context.Context, id int64) (*job.Job, error)
}

type IntegrationAPI interface {
	List(ctx context.Context) ([]integration.Integration, error)
	GetByOrigin(ctx context.Context, origin string) (*integration.Integration, error)
}

type TenderAPI interface {
	SubmitBatch(ctx context.Context, items []tender.Item, origin string) (tender.Stats, error)
	SubmitOne(ctx context.Context, item tender.Item, origin string) (tender.Stats, error)
	SubmitArchived(ctx context.Context, items []tender.Item, origin string) (*transport.Ack, error)
	SubmitInChunks(ctx context.Context, items []tender.Item, origin string, opts ...tender.ChunkOption) (tender.Stats, error)
	SubmitInChunksEach(ctx context.Context, items []tender.Item, origin string, opts ...tender.ChunkOption) ([]tender.Stats, error)
}

var (
	_ JobAPI         = (*job.Service)(nil)
	_ IntegrationAPI = (*integration.Service)(nil)
	_ TenderAPI      = (*tender.Service)(nil)
	_ API            = (*Client)(nil)
)
