package scraper

import (
	"context"
	"sync"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
)

// Runner runs one origin's work inside a job. *Client satisfies it.
type Runner interface {
	Run(ctx context.Context, origin string, work Work) (*Result, error)
}

type Outcome struct {
	Origin string
	Result *Result
	Err    error
}

// Pool runs registered origins on a fixed number of workers. Runs share
// only the Runner.
type Pool struct {
	runner  Runner
	reg     *Registry
	workers int
	log     logger.Interface
}

func NewPool(runner Runner, reg *Registry, workers int, log logger.Interface) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pool{runner: runner, reg: reg, workers: workers, log: log}
}

// Run scrapes origins, or every registered origin when none are given, and
// returns one Outcome per origin in input order. Origins not yet started
// when ctx is cancelled get ctx.Err().
func (p *Pool) Run(ctx context.Context, origins ...string) []Outcome {
	if len(origins) == 0 {
		origins = p.reg.Origins()
	}
	outcomes := make([]Outcome, len(origins))
	queue := make(chan int)

	var wg sync.WaitGroup
	for i := range min(p.workers, len(origins)) {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for idx := range queue {
				outcomes[idx] = p.runOne(ctx, id, origins[idx])
			}
		}(i)
	}

	for idx, origin := range origins {
		if ctx.Err() != nil {
			outcomes[idx] = Outcome{Origin: origin, Err: ctx.Err()}
			continue
		}
		queue <- idx
	}
	close(queue)
	wg.Wait()
	return outcomes
}

func (p *Pool) runOne(ctx context.Context, worker int, origin string) Outcome {
	work, err := p.reg.Get(origin)
	if err != nil {
		return Outcome{Origin: origin, Err: err}
	}

	p.log.Info("worker: running origin", "worker", worker, "origin", origin)
	res, err := p.runner.Run(ctx, origin, work)
	if err != nil {
		p.log.Error("worker: run origin", "worker", worker, "origin", origin, "error", err)
	}
	return Outcome{Origin: origin, Result: res, Err: err}
}
