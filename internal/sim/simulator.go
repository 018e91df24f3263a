package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/softbody"
)

// Simulator drives one body at a fixed rate. It owns the body for the
// duration of a run.
type Simulator struct {
	body      *softbody.Body
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(body *softbody.Body) *Simulator {
	return &Simulator{
		body:      body,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Body() *softbody.Body          { return s.body }

// Steps returns the number of ticks a run with cfg takes.
func Steps(cfg Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	steps := Steps(cfg)
	result := &Result{
		Times:   make([]float64, 0),
		Frames:  make([][]dynamo.Vec3, 0),
		Samples: make([]Sample, 0),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	gravity := s.body.Params().Gravity
	s.record(result, s.body.Snapshot(), gravity)

	observe := len(s.metrics) > 0 || len(s.observers) > 0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if err := s.body.Step(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++

		last := i == steps-1
		due := cfg.RecordEvery > 0 && result.StepsTaken%cfg.RecordEvery == 0
		if !observe && !due && !last {
			continue
		}

		snap := s.body.Snapshot()
		t := s.body.Time()
		for _, m := range s.metrics {
			m.Observe(snap, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(snap, t)
		}
		if due || last {
			s.record(result, snap, gravity)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(r *Result, snap *dynamo.Snapshot, gravity dynamo.Vec3) {
	contacts := 0
	for _, in := range snap.InContact {
		if in {
			contacts++
		}
	}
	r.Times = append(r.Times, s.body.Time())
	r.Frames = append(r.Frames, snap.Positions)
	r.Samples = append(r.Samples, Sample{
		Kinetic:       metrics.Kinetic(snap),
		Elastic:       metrics.Elastic(snap),
		Gravitational: metrics.Gravitational(snap, gravity),
		Contacts:      contacts,
	})
}

// ValidateConfig rejects a non-positive dt or duration.
func ValidateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return &dynamo.ConfigError{Field: "dt", Value: cfg.Dt, Wrapped: dynamo.ErrInvalidTimestep}
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return &dynamo.ConfigError{Field: "duration", Value: cfg.Duration, Wrapped: dynamo.ErrInvalidParameter}
	}
	if cfg.RecordEvery < 0 {
		return &dynamo.ConfigError{Field: "record_every", Value: cfg.RecordEvery, Wrapped: dynamo.ErrInvalidParameter}
	}
	return nil
}

// RunWithCallback steps the body until the duration elapses, the context is
// canceled or callback returns false. A non-positive duration runs until
// stopped. callback sees the body after every tick.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(*softbody.Body) bool) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return &dynamo.ConfigError{Field: "dt", Value: cfg.Dt, Wrapped: dynamo.ErrInvalidTimestep}
	}

	start := s.body.Time()
	for cfg.Duration <= 0 || s.body.Time()-start < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.body.Step(cfg.Dt); err != nil {
			return err
		}
		if !callback(s.body) {
			return nil
		}
	}

	return nil
}
