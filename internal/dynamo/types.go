package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

// Up is the world up axis.
var Up = Vec3{0, 1, 0}

// ContactSpring holds the penalty coefficients used while a particle
// penetrates the contact plane. RestLength is carried for per-vertex tuning
// and is always zero.
type ContactSpring struct {
	Ks         float64
	Kd         float64
	RestLength float64
}

// Spring connects its owner particle to Other. The owner index is always
// lower than Other, so each unordered pair is stored once.
type Spring struct {
	Ks         float64
	Kd         float64
	RestLength float64
	Other      int
}

type Particle struct {
	Position  Vec3
	Velocity  Vec3
	Mass      float64
	Force     Vec3
	InContact bool
	Contact   ContactSpring
	Springs   []Spring
}

// IsValid reports whether position and velocity are finite.
func (p *Particle) IsValid() bool {
	return IsFinite(p.Position) && IsFinite(p.Velocity)
}

type Plane struct {
	Position Vec3
	Normal   Vec3
}

// SignedDistance is positive above the plane and negative below it.
func (pl Plane) SignedDistance(p Vec3) float64 {
	return p.Sub(pl.Position).Dot(pl.Normal)
}

// DefaultPlane is the horizontal plane through the origin.
func DefaultPlane() Plane {
	return Plane{Position: Vec3{}, Normal: Up}
}

type Params struct {
	ContactKs             float64
	ContactKd             float64
	SpringKs              float64
	SpringKd              float64
	ParticleMass          float64
	UseGravity            bool
	Gravity               Vec3
	HandlePlaneCollisions bool
	// Workers selects the spring backend: 0 or 1 evaluates serially.
	Workers int
}

func DefaultParams() Params {
	return Params{
		ContactKs:             1000.0,
		ContactKd:             20.0,
		SpringKs:              100.0,
		SpringKd:              1.0,
		ParticleMass:          1.0,
		UseGravity:            true,
		Gravity:               Vec3{0, -9.81, 0},
		HandlePlaneCollisions: true,
	}
}

// Validate rejects values that would make a tick undefined.
func (p Params) Validate() error {
	if !(p.ParticleMass > 0) || math.IsInf(p.ParticleMass, 0) {
		return &ConfigError{Field: "particle_mass", Value: p.ParticleMass, Wrapped: ErrNonPositiveMass}
	}
	scalars := []struct {
		name string
		v    float64
	}{
		{"contact_ks", p.ContactKs},
		{"contact_kd", p.ContactKd},
		{"spring_ks", p.SpringKs},
		{"spring_kd", p.SpringKd},
	}
	for _, s := range scalars {
		if math.IsNaN(s.v) || math.IsInf(s.v, 0) {
			return &ConfigError{Field: s.name, Value: s.v, Wrapped: ErrInvalidParameter}
		}
	}
	if !IsFinite(p.Gravity) {
		return &ConfigError{Field: "gravity", Value: p.Gravity, Wrapped: ErrInvalidParameter}
	}
	return nil
}

// Snapshot is a copy of a body's observable state after a tick.
type Snapshot struct {
	Positions  []Vec3
	Velocities []Vec3
	Masses     []float64
	Forces     []Vec3
	InContact  []bool
	Springs    []SpringEdge
	Plane      Plane
}

// SpringEdge is one spring expressed as its two endpoint indices plus the
// values needed to evaluate its potential.
type SpringEdge struct {
	A, B       int
	Ks         float64
	RestLength float64
}

type Integrator interface {
	Name() string
	Integrate(ps []Particle, dt float64)
}

type Metric interface {
	Name() string
	Observe(s *Snapshot, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *Snapshot, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
