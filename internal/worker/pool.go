package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
	ctx     context.Context
}

// NewPoolContext creates a worker pool whose jobs stop when ctx is done
func NewPoolContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers, ctx: ctx}
}

// Run executes every job and returns the results in completion order. Once
// the pool's context is done, queued jobs are skipped and results still in
// flight are dropped, so fewer results than jobs may come back.
func (p *Pool) Run(jobs []Job) []Result {
	ctx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	queue := make(chan Job)
	results := make(chan Result, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				result := job.Execute(ctx)
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]Result, 0, len(jobs))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}
