package compute

import "github.com/san-kum/softsim/internal/dynamo"

// MinSeparation is the spring length below which the direction is undefined
// and the spring is skipped for the tick.
const MinSeparation = 1e-6

type Backend interface {
	Name() string
	// SpringForces adds every spring's force into the particle accumulators.
	SpringForces(ps []dynamo.Particle)
}

// NewBackend returns the serial backend for workers <= 1 and a parallel one
// otherwise.
func NewBackend(workers int) Backend {
	if workers <= 1 {
		return NewSerial()
	}
	return NewParallel(workers)
}

// SpringForce returns the force on the owner a exerted by spring s towards
// b. The force on b is its negation. ok is false when the particles are too
// close for the spring axis to be defined.
func SpringForce(a, b *dynamo.Particle, s dynamo.Spring) (f dynamo.Vec3, ok bool) {
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	if dist < MinSeparation {
		return dynamo.Vec3{}, false
	}
	dir := delta.Mul(1.0 / dist)

	stretch := dist - s.RestLength
	fs := dir.Mul(s.Ks * stretch)

	relVel := b.Velocity.Sub(a.Velocity)
	fd := dir.Mul(s.Kd * relVel.Dot(dir))

	return fs.Add(fd), true
}
