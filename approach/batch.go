package approach

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Response *Response
	Err      error
}

// RunBatch answers requests concurrently on a pool of poolSize workers.
// Results are returned in request order. A failing request records its
// error in its own result and does not stop the others. Requests that have
// not started when ctx is cancelled fail with the context error.
func RunBatch(ctx context.Context, runner Runner, requests []Request, poolSize int) ([]BatchResult, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	logger := slog.Default().With("component", "batch")
	logger.Debug("running batch", "requests", len(requests), "pool_size", poolSize)

	results := make([]BatchResult, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			resp, err := runner.Run(ctx, req)
			if err != nil {
				logger.Warn("request failed", "index", i, "err", err)
			}
			results[i] = BatchResult{Response: resp, Err: err}
		})
		if submitErr != nil {
			wg.Done()
			results[i].Err = submitErr
		}
	}
	wg.Wait()

	return results, nil
}
