package sim

import (
	"context"
	"runtime"
	"sync"
)

// pool runs jobs on a fixed set of goroutines. Each job is a trial index.
type pool struct {
	workers int
	jobs    chan int
	wg      sync.WaitGroup
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &pool{
		workers: workers,
		jobs:    make(chan int, workers*4),
	}
}

// start launches the workers. work receives the worker number so callers can
// keep per-worker state without locking.
func (p *pool) start(ctx context.Context, work func(ctx context.Context, worker, job int)) {
	for w := 0; w < p.workers; w++ {
		p.wg.Add(1)
		go func(w int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					work(ctx, w, job)
				}
			}
		}(w)
	}
}

// submit queues job and reports false once ctx is done.
func (p *pool) submit(ctx context.Context, job int) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case <-ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// stop closes the queue and waits for the workers to drain it.
func (p *pool) stop() {
	close(p.jobs)
	p.wg.Wait()
}
