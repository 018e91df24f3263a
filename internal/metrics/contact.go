package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/dynamo"
)

// ContactFraction averages the share of particles touching the plane.
type ContactFraction struct {
	name    string
	sum     float64
	samples int
}

func NewContactFraction() *ContactFraction {
	return &ContactFraction{name: "contact_fraction"}
}

func (c *ContactFraction) Name() string { return c.name }

func (c *ContactFraction) Observe(s *dynamo.Snapshot, t float64) {
	c.samples++
	if len(s.InContact) == 0 {
		return
	}
	n := 0
	for _, in := range s.InContact {
		if in {
			n++
		}
	}
	c.sum += float64(n) / float64(len(s.InContact))
}

func (c *ContactFraction) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ContactFraction) Reset() {
	c.sum = 0
	c.samples = 0
}

// MaxPenetration is the deepest distance any particle reached below the
// plane during the run.
type MaxPenetration struct {
	name  string
	depth float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{name: "max_penetration"}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(s *dynamo.Snapshot, t float64) {
	for _, p := range s.Positions {
		if d := s.Plane.SignedDistance(p); d < 0 {
			m.depth = math.Max(m.depth, -d)
		}
	}
}

func (m *MaxPenetration) Value() float64 { return m.depth }

func (m *MaxPenetration) Reset() { m.depth = 0 }

// Defaults returns the metrics recorded for every run.
func Defaults(gravity dynamo.Vec3) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(gravity),
		NewEnergyDrift(gravity),
		NewStability(50),
		NewContactFraction(),
		NewMaxPenetration(),
	}
}
