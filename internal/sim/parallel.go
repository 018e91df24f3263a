package sim

import (
	"context"
	"sync"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/softbody"
)

// Factory builds a fresh body for one member of an ensemble.
type Factory func() (*softbody.Body, error)

// Ensemble runs independent bodies concurrently, one goroutine per member.
// Bodies share nothing, so each tick stays single threaded.
type Ensemble struct {
	factories []Factory
	metrics   func() []dynamo.Metric
}

// NewEnsemble takes a metrics constructor so every member observes with its
// own metric instances.
func NewEnsemble(factories []Factory, metrics func() []dynamo.Metric) *Ensemble {
	return &Ensemble{factories: factories, metrics: metrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.factories))
	errs := make([]error, len(e.factories))

	var wg sync.WaitGroup
	for i, build := range e.factories {
		wg.Add(1)
		go func(idx int, build Factory) {
			defer wg.Done()

			body, err := build()
			if err != nil {
				errs[idx] = err
				return
			}

			sim := New(body)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i, build)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
