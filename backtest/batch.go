package backtest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a run's outcome with its position in the batch.
type BatchResult struct {
	Params Params
	Result *Result
	Err    error
}

// RunBatch runs independent engines with at most parallel in flight. A failed
// run does not stop the others; its error is reported in its BatchResult.
// Engines must not share ledgers or other per-run state, which New guarantees.
func RunBatch(ctx context.Context, engines []*Engine, parallel int) []BatchResult {
	if parallel <= 0 {
		parallel = 1
	}
	out := make([]BatchResult, len(engines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, e := range engines {
		i, e := i, e
		g.Go(func() error {
			res, err := e.Run(gctx)
			out[i] = BatchResult{Params: e.Params(), Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
