package integrators

import "github.com/san-kum/softsim/internal/dynamo"

// SemiImplicitEuler updates velocity first and then advances position with
// the updated velocity.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "symplectic" }

func (e *SemiImplicitEuler) Integrate(ps []dynamo.Particle, dt float64) {
	for i := range ps {
		p := &ps[i]
		acc := p.Force.Mul(1.0 / p.Mass)
		p.Velocity = p.Velocity.Add(acc.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	}
}

// Euler is the plain explicit scheme: position advances with the velocity
// from the start of the step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Integrate(ps []dynamo.Particle, dt float64) {
	for i := range ps {
		p := &ps[i]
		acc := p.Force.Mul(1.0 / p.Mass)
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		p.Velocity = p.Velocity.Add(acc.Mul(dt))
	}
}
