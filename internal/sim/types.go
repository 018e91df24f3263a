package sim

import "github.com/san-kum/softsim/internal/dynamo"

type Config struct {
	Dt       float64
	Duration float64
	// RecordEvery keeps one frame per this many ticks; 0 records only the
	// first and last frames.
	RecordEvery int
}

// Sample holds the energy breakdown of one recorded frame.
type Sample struct {
	Kinetic       float64
	Elastic       float64
	Gravitational float64
	Contacts      int
}

func (s Sample) Total() float64 {
	return s.Kinetic + s.Elastic + s.Gravitational
}

type Result struct {
	Times      []float64
	Frames     [][]dynamo.Vec3
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded frame.
func (r *Result) Final() []dynamo.Vec3 {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// Diverged reports whether the run stopped on a NaN or Inf state.
func (r *Result) Diverged() bool {
	return len(r.Errors) > 0
}
