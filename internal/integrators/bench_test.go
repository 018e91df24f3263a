package integrators

import (
	"testing"

	"github.com/san-kum/softsim/internal/dynamo"
)

func benchParticles(n int) []dynamo.Particle {
	ps := make([]dynamo.Particle, n)
	for i := range ps {
		ps[i] = dynamo.Particle{
			Position: dynamo.Vec3{float64(i) * 0.1, 1, 0},
			Mass:     1,
			Force:    dynamo.Vec3{0, -9.81, 0},
		}
	}
	return ps
}

func BenchmarkSemiImplicitEuler(b *testing.B) {
	integrator := NewSemiImplicitEuler()
	ps := benchParticles(256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Integrate(ps, 0.001)
	}
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	ps := benchParticles(256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Integrate(ps, 0.001)
	}
}
