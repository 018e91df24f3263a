package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/dynamo"
)

// Kinetic returns Σ ½ m |v|².
func Kinetic(s *dynamo.Snapshot) float64 {
	e := 0.0
	for i, v := range s.Velocities {
		e += 0.5 * s.Masses[i] * v.Dot(v)
	}
	return e
}

// Elastic returns the potential stored in the internal springs.
func Elastic(s *dynamo.Snapshot) float64 {
	e := 0.0
	for _, sp := range s.Springs {
		stretch := s.Positions[sp.B].Sub(s.Positions[sp.A]).Len() - sp.RestLength
		e += 0.5 * sp.Ks * stretch * stretch
	}
	return e
}

// Gravitational returns -Σ m g·p, zero at the world origin.
func Gravitational(s *dynamo.Snapshot, gravity dynamo.Vec3) float64 {
	e := 0.0
	for i, p := range s.Positions {
		e -= s.Masses[i] * gravity.Dot(p)
	}
	return e
}

// Total is kinetic plus elastic plus gravitational energy. Energy stored in
// contact penalty springs is not included.
func Total(s *dynamo.Snapshot, gravity dynamo.Vec3) float64 {
	return Kinetic(s) + Elastic(s) + Gravitational(s, gravity)
}

type Energy struct {
	name        string
	gravity     dynamo.Vec3
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity dynamo.Vec3) *Energy {
	return &Energy{
		name:    "energy",
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *dynamo.Snapshot, t float64) {
	e.totalEnergy += Total(s, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

type EnergyDrift struct {
	name          string
	gravity       dynamo.Vec3
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity dynamo.Vec3) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *dynamo.Snapshot, t float64) {
	energy := Total(s, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
