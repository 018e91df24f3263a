package softbody

import "github.com/san-kum/softsim/internal/dynamo"

// ResetForces zeroes every force accumulator. It must run before any other
// pass of a tick.
func (b *Body) ResetForces() {
	for i := range b.particles {
		b.particles[i].Force = dynamo.Vec3{}
	}
}

// ApplyGravity adds m·g to every particle when gravity is enabled.
func (b *Body) ApplyGravity() {
	if !b.params.UseGravity {
		return
	}
	for i := range b.particles {
		p := &b.particles[i]
		p.Force = p.Force.Add(b.params.Gravity.Mul(p.Mass))
	}
}

// ApplySprings adds spring and damping forces. Each spring is visited once
// through its owner and applied to both endpoints with opposite signs.
func (b *Body) ApplySprings() {
	b.backend.SpringForces(b.particles)
}

// ApplyPlaneContact pushes penetrating particles out along the plane
// normal and updates their contact flags. When plane collisions are
// disabled the pass does nothing, flags included.
func (b *Body) ApplyPlaneContact() {
	if !b.params.HandlePlaneCollisions {
		return
	}

	n := b.plane.Normal
	for i := range b.particles {
		p := &b.particles[i]
		d := b.plane.SignedDistance(p.Position)
		if d >= 0 {
			p.InContact = false
			continue
		}

		fs := n.Mul(p.Contact.Ks * -d)
		fd := n.Mul(p.Contact.Kd * -p.Velocity.Dot(n))
		p.Force = p.Force.Add(fs.Add(fd))
		p.InContact = true
	}
}
