package integrators

import "github.com/san-kum/softsim/internal/dynamo"

// Leapfrog is the kick-drift form of the leapfrog scheme. Velocities live at
// half steps: the first call kicks by dt/2, every later call by a full dt.
// A change in particle count restarts the half-step offset.
type Leapfrog struct {
	started bool
	n       int
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Integrate(ps []dynamo.Particle, dt float64) {
	kick := dt
	if !l.started || l.n != len(ps) {
		kick = 0.5 * dt
		l.started = true
		l.n = len(ps)
	}

	for i := range ps {
		p := &ps[i]
		acc := p.Force.Mul(1.0 / p.Mass)
		p.Velocity = p.Velocity.Add(acc.Mul(kick))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	}
}
