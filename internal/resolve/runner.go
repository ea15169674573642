package resolve

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/metrics"
)

// RunnerConfig controls worker-pool behavior for one batch run.
type RunnerConfig struct {
	// Concurrency is the number of workers pulling contract numbers.
	Concurrency int
	// AbortOnAuthFailure cancels remaining queued work once a row
	// classifies as AUTH_FAILED, instead of burning the rate-limited
	// queue against a credential that will keep failing.
	AbortOnAuthFailure bool
}

// Progress is a snapshot reported after each finished item.
type Progress struct {
	Done      int
	Total     int
	Succeeded int
	Failed    int
	ETA       time.Duration
}

// Runner executes the pipeline over a contract-number list with a
// bounded worker pool. Workers share one rate limiter and one token
// cache through the pipeline's clients; results are buffered by input
// index so output order is deterministic regardless of completion
// order.
type Runner struct {
	pipeline *Pipeline
	cfg      RunnerConfig
	log      *slog.Logger
}

// NewRunner creates a runner. Concurrency below 1 is clamped to 1.
func NewRunner(pipeline *Pipeline, cfg RunnerConfig, log *slog.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Runner{pipeline: pipeline, cfg: cfg, log: log}
}

// Run resolves every contract number and returns one row per input, in
// input order. onProgress, if non-nil, is called after each finished
// item.
func (r *Runner) Run(ctx context.Context, numbers []string, onProgress func(Progress)) []domain.ResultRow {
	results := make([]domain.ResultRow, len(numbers))
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fatalAuth atomic.Bool
	var mu sync.Mutex
	done, succeeded, failed := 0, 0, 0

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)

	for i, number := range numbers {
		i, number := i, number
		g.Go(func() error {
			var row domain.ResultRow
			switch {
			case fatalAuth.Load():
				row = domain.ResultRow{
					ContractNumber: number,
					Status:         domain.StatusAuthFailed,
					ErrorMessage:   "skipped: fatal auth failure",
				}
			case runCtx.Err() != nil:
				row = domain.ResultRow{
					ContractNumber: number,
					Status:         domain.StatusUnknownError,
					ErrorMessage:   "canceled",
				}
			default:
				row = r.pipeline.Resolve(runCtx, number)
				if r.cfg.AbortOnAuthFailure && row.Status == domain.StatusAuthFailed {
					if fatalAuth.CompareAndSwap(false, true) {
						r.log.Warn("fatal auth failure, aborting remaining work",
							"contract_number", number)
						cancel()
					}
				}
			}
			results[i] = row
			metrics.ResolutionsTotal.WithLabelValues(string(row.Status)).Inc()

			mu.Lock()
			done++
			if row.Status == domain.StatusSuccess {
				succeeded++
			} else {
				failed++
			}
			snapshot := Progress{
				Done:      done,
				Total:     len(numbers),
				Succeeded: succeeded,
				Failed:    failed,
			}
			if done > 0 {
				avg := time.Since(start) / time.Duration(done)
				snapshot.ETA = avg * time.Duration(len(numbers)-done)
			}
			mu.Unlock()

			if onProgress != nil {
				onProgress(snapshot)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
