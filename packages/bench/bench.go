// Package bench runs fixed-rate latency benchmarks against a single API
// call and reports latency percentiles.
package bench

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

// Config controls one benchmark run
type Config struct {
	Rate     float64       // calls per second across all workers, 0 = unpaced
	Duration time.Duration // how long to keep issuing calls
	Workers  int           // concurrent callers, default 1
}

// Runner issues the same call repeatedly and collects metrics
type Runner struct {
	client  *rest.Client
	config  Config
	metrics *Metrics
}

func NewRunner(client *rest.Client, config Config) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Runner{
		client:  client,
		config:  config,
		metrics: NewMetrics(),
	}
}

// Run issues req from the configured workers until the duration elapses or
// ctx is canceled, then returns the aggregated summary. The request is
// shared read-only across workers; the client copies it per call.
func (r *Runner) Run(ctx context.Context, req *rest.Request) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runCtx := ctx
	if r.config.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.config.Duration)
		defer cancel()
	}

	var limiter *rate.Limiter
	if r.config.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.Rate), 1)
	}

	r.metrics.Start()

	var wg sync.WaitGroup
	for i := 0; i < r.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if limiter != nil {
					if err := limiter.Wait(runCtx); err != nil {
						return
					}
				} else if runCtx.Err() != nil {
					return
				}

				start := time.Now()
				reply, err := r.client.API(req)
				latency := time.Since(start)

				// Calls cut short by the deadline are not recorded.
				if runCtx.Err() != nil {
					return
				}
				r.metrics.RecordCall(latency, err, reply.Empty)
			}
		}()
	}
	wg.Wait()

	r.metrics.Stop()
	return r.metrics.Summarize(), nil
}
