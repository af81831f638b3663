// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-auctioneer/internal/logger"
	"github.com/rovshanmuradov/solana-auctioneer/internal/task"
)

// Summary counts order outcomes of one run.
type Summary struct {
	Total     int
	Confirmed int
	Rejected  int
	Failed    int
	DryRun    int
	Results   []Result
}

// Failures returns the number of orders that did not complete.
func (s Summary) Failures() int {
	return s.Rejected + s.Failed
}

// Runner executes a batch of independent orders with bounded concurrency.
type Runner struct {
	executor *Executor
	workers  int
	logger   *zap.Logger
}

func NewRunner(executor *Executor, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{executor: executor, workers: workers, logger: logger}
}

// Run executes every order. An order failure does not stop the others;
// the returned error reports how many failed.
func (r *Runner) Run(ctx context.Context, orders []*task.Order) (Summary, error) {
	r.logger.Info(fmt.Sprintf("Starting execution of %d orders with %d workers", len(orders), r.workers))

	results := make([]Result, len(orders))
	var mu sync.Mutex
	summary := Summary{Total: len(orders)}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, o := range orders {
		i, o := i, o
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = Result{Order: o, Status: logger.SaleFailed, Err: ctx.Err()}
			} else {
				results[i] = r.executor.Execute(ctx, o)
			}

			mu.Lock()
			defer mu.Unlock()
			switch results[i].Status {
			case logger.SaleConfirmed:
				summary.Confirmed++
			case logger.SaleRejected:
				summary.Rejected++
			case logger.SaleDryRun:
				summary.DryRun++
			default:
				summary.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()
	summary.Results = results

	r.logger.Info("All orders finished",
		zap.Int("total", summary.Total),
		zap.Int("confirmed", summary.Confirmed),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
		zap.Int("dry_run", summary.DryRun))

	if n := summary.Failures(); n > 0 {
		return summary, fmt.Errorf("%d of %d orders failed", n, summary.Total)
	}
	return summary, nil
}
