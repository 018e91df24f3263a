package softbody

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/softsim/internal/compute"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/integrators"
)

// Body owns the particles, springs and contact plane of one soft body.
// It is not safe for concurrent use.
type Body struct {
	particles  []dynamo.Particle
	plane      dynamo.Plane
	params     dynamo.Params
	integrator dynamo.Integrator
	backend    compute.Backend
	steps      int
	time       float64
}

type options struct {
	frame      *Frame
	integrator dynamo.Integrator
	backend    compute.Backend
}

type Option func(*options)

// WithPlane seeds the contact plane from an external frame.
func WithPlane(frame *Frame) Option {
	return func(o *options) { o.frame = frame }
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(o *options) { o.integrator = integ }
}

// WithBackend overrides the spring backend chosen from Params.Workers.
func WithBackend(b compute.Backend) Option {
	return func(o *options) { o.backend = b }
}

// New builds a body from world-space vertex positions. Configuration errors
// are returned as *dynamo.ConfigError and no body is created.
func New(positions []dynamo.Vec3, params dynamo.Params, opts ...Option) (*Body, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for i, p := range positions {
		if !dynamo.IsFinite(p) {
			return nil, &dynamo.ConfigError{Field: fmt.Sprintf("positions[%d]", i), Value: p, Wrapped: dynamo.ErrInvalidParameter}
		}
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	plane, err := NewPlane(o.frame)
	if err != nil {
		return nil, err
	}

	if o.integrator == nil {
		o.integrator = integrators.NewSemiImplicitEuler()
	}
	if o.backend == nil {
		o.backend = compute.NewBackend(params.Workers)
	}

	return &Body{
		particles:  buildParticles(positions, params),
		plane:      plane,
		params:     params,
		integrator: o.integrator,
		backend:    o.backend,
	}, nil
}

// Step advances the body by one tick of length dt.
func (b *Body) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return &dynamo.ConfigError{Field: "dt", Value: dt, Wrapped: dynamo.ErrInvalidTimestep}
	}

	b.AccumulateForces()
	b.integrator.Integrate(b.particles, dt)

	b.steps++
	b.time += dt

	for i := range b.particles {
		if !b.particles[i].IsValid() {
			return &dynamo.SimError{
				Step:    b.steps,
				Time:    b.time,
				Message: fmt.Sprintf("particle %d diverged", i),
				Wrapped: dynamo.ErrInvalidState,
			}
		}
	}
	return nil
}

// AccumulateForces runs the force passes of a tick in order without
// integrating.
func (b *Body) AccumulateForces() {
	b.ResetForces()
	b.ApplyGravity()
	b.ApplySprings()
	b.ApplyPlaneContact()
}

func (b *Body) Len() int { return len(b.particles) }

func (b *Body) SpringCount() int {
	total := 0
	for i := range b.particles {
		total += len(b.particles[i].Springs)
	}
	return total
}

func (b *Body) Plane() dynamo.Plane           { return b.plane }
func (b *Body) Params() dynamo.Params         { return b.params }
func (b *Body) Integrator() dynamo.Integrator { return b.integrator }
func (b *Body) Backend() compute.Backend      { return b.backend }
func (b *Body) Steps() int                    { return b.steps }
func (b *Body) Time() float64                 { return b.time }

// Positions returns the current world positions in vertex order.
func (b *Body) Positions() []dynamo.Vec3 {
	out := make([]dynamo.Vec3, len(b.particles))
	for i := range b.particles {
		out[i] = b.particles[i].Position
	}
	return out
}

// Particles returns a copy of the particle records. Spring slices are
// shared with the body and must not be modified.
func (b *Body) Particles() []dynamo.Particle {
	out := make([]dynamo.Particle, len(b.particles))
	copy(out, b.particles)
	return out
}

func (b *Body) Particle(i int) dynamo.Particle {
	return b.particles[i]
}

// SetPosition moves particle i without touching its springs' rest lengths.
func (b *Body) SetPosition(i int, p dynamo.Vec3) {
	b.particles[i].Position = p
}

func (b *Body) SetVelocity(i int, v dynamo.Vec3) {
	b.particles[i].Velocity = v
}

// Snapshot copies the observable state for metrics and visualization.
func (b *Body) Snapshot() *dynamo.Snapshot {
	n := len(b.particles)
	s := &dynamo.Snapshot{
		Positions:  make([]dynamo.Vec3, n),
		Velocities: make([]dynamo.Vec3, n),
		Masses:     make([]float64, n),
		Forces:     make([]dynamo.Vec3, n),
		InContact:  make([]bool, n),
		Springs:    make([]dynamo.SpringEdge, 0, b.SpringCount()),
		Plane:      b.plane,
	}
	for i := range b.particles {
		p := &b.particles[i]
		s.Positions[i] = p.Position
		s.Velocities[i] = p.Velocity
		s.Masses[i] = p.Mass
		s.Forces[i] = p.Force
		s.InContact[i] = p.InContact
		for _, sp := range p.Springs {
			s.Springs = append(s.Springs, dynamo.SpringEdge{A: i, B: sp.Other, Ks: sp.Ks, RestLength: sp.RestLength})
		}
	}
	return s
}

// GetParams implements dynamo.Configurable
func (b *Body) GetParams() map[string]float64 {
	return map[string]float64{
		"spring_ks":  b.params.SpringKs,
		"spring_kd":  b.params.SpringKd,
		"contact_ks": b.params.ContactKs,
		"contact_kd": b.params.ContactKd,
		"mass":       b.params.ParticleMass,
		"gravity_y":  b.params.Gravity[1],
	}
}

// ParamNames lists the names accepted by SetParam in sorted order.
func (b *Body) ParamNames() []string {
	params := b.GetParams()
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetParam implements dynamo.Configurable. Spring and contact coefficients
// are written through to every particle.
func (b *Body) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &dynamo.ConfigError{Field: name, Value: value, Wrapped: dynamo.ErrInvalidParameter}
	}

	switch name {
	case "spring_ks", "spring_kd":
		for i := range b.particles {
			for j := range b.particles[i].Springs {
				if name == "spring_ks" {
					b.particles[i].Springs[j].Ks = value
				} else {
					b.particles[i].Springs[j].Kd = value
				}
			}
		}
		if name == "spring_ks" {
			b.params.SpringKs = value
		} else {
			b.params.SpringKd = value
		}
	case "contact_ks":
		b.params.ContactKs = value
		for i := range b.particles {
			b.particles[i].Contact.Ks = value
		}
	case "contact_kd":
		b.params.ContactKd = value
		for i := range b.particles {
			b.particles[i].Contact.Kd = value
		}
	case "mass":
		if value <= 0 {
			return &dynamo.ConfigError{Field: name, Value: value, Wrapped: dynamo.ErrNonPositiveMass}
		}
		b.params.ParticleMass = value
		for i := range b.particles {
			b.particles[i].Mass = value
		}
	case "gravity_y":
		b.params.Gravity[1] = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
