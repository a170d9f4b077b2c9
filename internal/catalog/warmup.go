package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/pokeguess/pokeguess/internal/logger"
)

// WarmupResult summarizes a Warm run.
type WarmupResult struct {
	Loaded   int
	Failed   int
	Duration time.Duration
}

// Warm resolves every id in the configured range using at most concurrency
// parallel lookups. Failures are logged and skipped. It returns early with
// ctx.Err() when the context is cancelled.
func (c *Cache) Warm(ctx context.Context, concurrency int) (WarmupResult, error) {
	start := time.Now()
	var loaded, failed atomic.Int64

	p := pool.New().WithMaxGoroutines(max(concurrency, 1))
	for id := c.minID; id <= c.maxID; id++ {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			if _, err := c.ResolveID(ctx, id); err != nil {
				failed.Add(1)
				return
			}
			loaded.Add(1)
		})
	}
	p.Wait()

	result := WarmupResult{
		Loaded:   int(loaded.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}

	c.log.Info("Catalog warmup finished",
		logger.Int("loaded", result.Loaded),
		logger.Int("failed", result.Failed),
		logger.Int("cached", c.Len()),
		logger.Duration("elapsed", result.Duration))

	return result, ctx.Err()
}
