package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Mesh is the host-side vertex buffer: local positions plus the transform
// placing them in the world.
type Mesh struct {
	Name      string
	Vertices  []dynamo.Vec3
	Transform Transform
}

func New(name string, vertices []dynamo.Vec3) *Mesh {
	return &Mesh{Name: name, Vertices: vertices, Transform: Identity()}
}

// WorldVertices returns the vertices in world space, in buffer order.
func (m *Mesh) WorldVertices() []dynamo.Vec3 {
	mat := m.Transform.Matrix()
	out := make([]dynamo.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = mgl64.TransformCoordinate(v, mat)
	}
	return out
}

// SetWorldVertices writes simulated world positions back into the local
// vertex buffer.
func (m *Mesh) SetWorldVertices(world []dynamo.Vec3) error {
	if len(world) != len(m.Vertices) {
		return fmt.Errorf("mesh %s: got %d positions for %d vertices", m.Name, len(world), len(m.Vertices))
	}
	inv := m.Transform.Matrix().Inv()
	for i, p := range world {
		m.Vertices[i] = mgl64.TransformCoordinate(p, inv)
	}
	return nil
}

// Bounds returns the axis-aligned box around points. Both corners are zero
// for an empty slice.
func Bounds(points []dynamo.Vec3) (lo, hi dynamo.Vec3) {
	if len(points) == 0 {
		return
	}
	lo = dynamo.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = dynamo.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Centroid is the unweighted mean of points.
func Centroid(points []dynamo.Vec3) dynamo.Vec3 {
	var c dynamo.Vec3
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Mul(1.0 / float64(len(points)))
}
