package backtest

import (
	"context"
	"runtime"
	"sync"

	"github.com/newthinker/macross/internal/core"
)

// WindowPair is one (short, long) combination in a parameter sweep.
type WindowPair struct {
	Short int
	Long  int
}

// SweepResult pairs a window combination with its run outcome.
type SweepResult struct {
	Pair   WindowPair
	Result *Result
	Err    error
}

// Sweep backtests every window pair against the same price series.
// Each pair is an independent, side-effect-free invocation of the whole
// pipeline; parallelism never reaches inside a single run, so each
// result is identical to what a sequential run would produce. Results
// come back in the order the pairs were given.
func (r *Runner) Sweep(ctx context.Context, base Params, pairs []WindowPair, prices []core.PricePoint, workers int) []SweepResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	results := make([]SweepResult, len(pairs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				params := base
				params.ShortWindow = pairs[i].Short
				params.LongWindow = pairs[i].Long

				if r.metrics != nil {
					r.metrics.SweepInc()
				}
				res, err := r.Run(ctx, params, prices)
				if r.metrics != nil {
					r.metrics.SweepDec()
				}

				results[i] = SweepResult{Pair: pairs[i], Result: res, Err: err}
			}
		}()
	}

	for i := range pairs {
		select {
		case <-ctx.Done():
			// Mark the remaining pairs cancelled instead of leaving
			// zero-valued entries behind.
			for j := i; j < len(pairs); j++ {
				results[j] = SweepResult{Pair: pairs[j], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// Best returns the completed sweep result with the highest excess
// return, or nil if every run failed.
func Best(results []SweepResult) *SweepResult {
	var best *SweepResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Result.Performance.ExcessReturnPct > best.Result.Performance.ExcessReturnPct {
			best = &results[i]
		}
	}
	return best
}
