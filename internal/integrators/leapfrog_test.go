package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/softsim/internal/dynamo"
)

func TestLeapfrog_ExactUnderConstantForce(t *testing.T) {
	ps := []dynamo.Particle{{Mass: 2, Force: dynamo.Vec3{0, -4, 0}}}
	l := NewLeapfrog()

	// a = -2, so x(t) = -t^2. The half kick keeps positions exact.
	l.Integrate(ps, 0.5)
	if math.Abs(ps[0].Position[1]+0.25) > 1e-12 {
		t.Errorf("step 1 position: got %f, want -0.25", ps[0].Position[1])
	}
	if math.Abs(ps[0].Velocity[1]+0.5) > 1e-12 {
		t.Errorf("step 1 velocity: got %f, want -0.5", ps[0].Velocity[1])
	}

	l.Integrate(ps, 0.5)
	if math.Abs(ps[0].Position[1]+1) > 1e-12 {
		t.Errorf("step 2 position: got %f, want -1", ps[0].Position[1])
	}
	if math.Abs(ps[0].Velocity[1]+1.5) > 1e-12 {
		t.Errorf("step 2 velocity: got %f, want -1.5", ps[0].Velocity[1])
	}
}

func TestLeapfrog_ResizeRestartsHalfKick(t *testing.T) {
	l := NewLeapfrog()
	ps := []dynamo.Particle{{Mass: 1, Force: dynamo.Vec3{2, 0, 0}}}
	l.Integrate(ps, 1)
	l.Integrate(ps, 1)
	if ps[0].Velocity[0] != 3 {
		t.Errorf("velocity after full kick: got %f, want 3", ps[0].Velocity[0])
	}

	more := []dynamo.Particle{{Mass: 1, Force: dynamo.Vec3{2, 0, 0}}, {Mass: 1}}
	l.Integrate(more, 1)
	if more[0].Velocity[0] != 1 {
		t.Errorf("velocity after resize: got %f, want 1", more[0].Velocity[0])
	}
}
