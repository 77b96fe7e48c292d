package flowkit

import (
	"context"
	"sync"

	"github.com/rgalloway/flowkit/pkg/flowerrors"
)

// Piper is the WorkerPool described in spec.md §4.5: it feeds many seed
// contexts through one compiled Pipeline with at most poolSize runs
// in-flight at a time, returning settlement records in original input
// order regardless of completion order.
type Piper struct {
	pipeline *Pipeline
	poolSize int
	runner   *Runner
}

// NewPiper builds a Piper over p with the given options applied over
// spec.md §6's default pool size of 10.
func NewPiper(p *Pipeline, opts ...PoolOption) *Piper {
	w := &Piper{pipeline: p, poolSize: p.settings.poolSize()}
	for _, opt := range opts {
		opt(w)
	}
	if w.runner == nil {
		w.runner = NewRunner()
	}
	return w
}

// Pipe processes seeds through the Piper's Pipeline with at most poolSize
// concurrent runs. setup (if the hook source defines one) runs once before
// any item begins; cleanup (if defined) runs once after every worker has
// finished, even if every item failed.
func (w *Piper) Pipe(ctx context.Context, seeds []any) ([]Settlement, error) {
	disp := w.pipeline.dispatcher(w.runner.dispatcherOptions(w.pipeline)...)

	if err := disp.Setup(ctx, seeds); err != nil {
		return nil, &flowerrors.SetupFailure{Cause: err}
	}

	results := w.fanOut(ctx, seeds)

	if err := disp.Cleanup(ctx); err != nil {
		return results, &flowerrors.CleanupFailure{Cause: err}
	}
	return results, nil
}

// pipeInternal is used by SPLIT when its body is a nested Pipeline: setup
// and cleanup belong to the outer run and must not be re-invoked here.
func (w *Piper) pipeInternal(ctx context.Context, seeds []any) ([]Settlement, error) {
	return w.fanOut(ctx, seeds), nil
}

func (w *Piper) fanOut(ctx context.Context, seeds []any) []Settlement {
	n := len(seeds)
	results := make([]Settlement, n)
	if n == 0 {
		return results
	}

	indexes := make(chan int, n)
	for i := range seeds {
		indexes <- i
	}
	close(indexes)

	workers := w.poolSize
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					results[i] = Settlement{Status: StatusRejected, Reason: err}
					continue
				}
				value, err := w.runner.Run(ctx, w.pipeline, seeds[i])
				if err != nil {
					results[i] = Settlement{Status: StatusRejected, Reason: err}
					continue
				}
				results[i] = Settlement{Status: StatusFulfilled, Value: value}
			}
		}()
	}
	wg.Wait()
	return results
}
