package tender

import (
	"context"
	"time"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/transport"
)

const (
	batchPath    = "/api/scraper_api/tenders/batch"
	archivedPath = "/api/scraper_api/tenders/archived"

	DefaultChunkSize = 100
	DefaultPause     = time.Second
)

// Doer is the slice of the request executor the tender accessors need.
type Doer interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Sleeper waits between chunks. It returns early with ctx.Err() when ctx is
// done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Service struct {
	client Doer
	log    logger.Interface
	sleep  Sleeper
}

type Option func(*Service)

func WithLogger(l logger.Interface) Option {
	return func(s *Service) { s.log = l }
}

func WithSleeper(fn Sleeper) Option {
	return func(s *Service) { s.sleep = fn }
}

func NewService(client Doer, opts ...Option) *Service {
	s := &Service{
		client: client,
		log:    logger.NewNop(),
		sleep:  sleep,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SubmitBatch sends items in a single request and returns the backend's
// counts for it.
func (s *Service) SubmitBatch(ctx context.Context, items []Item, origin string) (Stats, error) {
	req := SubmitRequest{Data: items, WebsiteOrigin: origin}
	if err := req.Validate(); err != nil {
		return Stats{}, err
	}
	var out BatchResponse
	if err := s.client.Post(ctx, batchPath, req, &out); err != nil {
		return Stats{}, err
	}
	return out.Stats, nil
}

func (s *Service) SubmitOne(ctx context.Context, item Item, origin string) (Stats, error) {
	return s.SubmitBatch(ctx, []Item{item}, origin)
}

// SubmitArchived reports items that disappeared from the source.
func (s *Service) SubmitArchived(ctx context.Context, items []Item, origin string) (*transport.Ack, error) {
	req := SubmitRequest{Data: items, WebsiteOrigin: origin}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out transport.Ack
	if err := s.client.Post(ctx, archivedPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
