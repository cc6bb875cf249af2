package tender

import (
	"context"
	"fmt"
	"time"
)

type chunkConfig struct {
	size  int
	pause time.Duration
}

type ChunkOption func(*chunkConfig)

// WithChunkSize sets the maximum number of items per request. Values below
// one keep the default.
func WithChunkSize(n int) ChunkOption {
	return func(c *chunkConfig) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithPause sets the wait between consecutive chunk requests.
func WithPause(d time.Duration) ChunkOption {
	return func(c *chunkConfig) {
		if d >= 0 {
			c.pause = d
		}
	}
}

// PartialError reports a chunked submission that stopped part way. The
// chunks before FailedChunk were committed and are counted in Committed.
type PartialError struct {
	Committed   Stats
	ChunksDone  int
	ChunksTotal int
	FailedChunk int // 1-based
	Err         error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("submit chunk %d/%d: %v", e.FailedChunk, e.ChunksTotal, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// SubmitInChunks submits items sequentially in chunks and returns the summed
// counts. Items are validated up front and an invalid one fails the call
// before any request. Otherwise it stops at the first failing chunk and
// returns a *PartialError holding what was already committed, even when the
// input fit in a single chunk; the returned Stats is then zero.
func (s *Service) SubmitInChunks(ctx context.Context, items []Item, origin string, opts ...ChunkOption) (Stats, error) {
	per, err := s.SubmitInChunksEach(ctx, items, origin, opts...)
	if err != nil {
		return Stats{}, err
	}
	var total Stats
	for _, st := range per {
		total = total.Add(st)
	}
	s.log.Info("tender submission finished",
		"origin", origin,
		"items", len(items),
		"chunks", len(per),
		"new", total.New,
		"updated", total.Updated,
	)
	return total, nil
}

// SubmitInChunksEach is SubmitInChunks returning the per-chunk counts in
// submission order.
func (s *Service) SubmitInChunksEach(ctx context.Context, items []Item, origin string, opts ...ChunkOption) ([]Stats, error) {
	cfg := chunkConfig{size: DefaultChunkSize, pause: DefaultPause}
	for _, o := range opts {
		o(&cfg)
	}

	// Nothing is sent unless every item is valid.
	if err := (SubmitRequest{Data: items, WebsiteOrigin: origin}).Validate(); err != nil {
		return nil, err
	}

	if len(items) <= cfg.size {
		st, err := s.SubmitBatch(ctx, items, origin)
		if err != nil {
			return nil, partialError(Stats{}, 0, 1, err)
		}
		return []Stats{st}, nil
	}

	chunks := Chunk(items, cfg.size)
	results := make([]Stats, 0, len(chunks))
	var committed Stats

	for i, chunk := range chunks {
		if i > 0 {
			if err := s.sleep(ctx, cfg.pause); err != nil {
				return nil, partialError(committed, i, len(chunks), err)
			}
		}

		st, err := s.SubmitBatch(ctx, chunk, origin)
		if err != nil {
			s.log.Error("tender chunk failed",
				"origin", origin,
				"chunk", i+1,
				"chunks", len(chunks),
				"error", err,
			)
			return nil, partialError(committed, i, len(chunks), err)
		}

		committed = committed.Add(st)
		results = append(results, st)
		s.log.Info("tender chunk submitted",
			"origin", origin,
			"chunk", i+1,
			"chunks", len(chunks),
			"size", len(chunk),
			"new", st.New,
			"updated", st.Updated,
		)
	}
	return results, nil
}

func partialError(committed Stats, done, total int, err error) *PartialError {
	return &PartialError{
		Committed:   committed,
		ChunksDone:  done,
		ChunksTotal: total,
		FailedChunk: done + 1,
		Err:         err,
	}
}
