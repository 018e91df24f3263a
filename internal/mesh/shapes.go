package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/softsim/internal/dynamo"
)

// DefaultGridDivisions is the number of cells per side of the grid shape.
const DefaultGridDivisions = 4

var shapes = map[string]func(size float64) []dynamo.Vec3{
	"cube":        cube,
	"tetrahedron": tetrahedron,
	"octahedron":  octahedron,
	"icosahedron": icosahedron,
	"grid":        func(size float64) []dynamo.Vec3 { return Grid(size, DefaultGridDivisions) },
}

// Shape builds a named primitive centred on the local origin with the given
// edge length (or diameter for the platonic solids).
func Shape(name string, size float64) (*Mesh, error) {
	build, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown shape: %s (available: %v)", name, ShapeNames())
	}
	if !(size > 0) {
		return nil, fmt.Errorf("shape size must be positive, got %v", size)
	}
	return New(name, build(size)), nil
}

func ShapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cube(size float64) []dynamo.Vec3 {
	h := size / 2
	vs := make([]dynamo.Vec3, 0, 8)
	for _, x := range []float64{-h, h} {
		for _, y := range []float64{-h, h} {
			for _, z := range []float64{-h, h} {
				vs = append(vs, dynamo.Vec3{x, y, z})
			}
		}
	}
	return vs
}

func tetrahedron(size float64) []dynamo.Vec3 {
	r := size / 2
	s := r / math.Sqrt(3)
	return []dynamo.Vec3{
		{s, s, s},
		{s, -s, -s},
		{-s, s, -s},
		{-s, -s, s},
	}
}

func octahedron(size float64) []dynamo.Vec3 {
	r := size / 2
	return []dynamo.Vec3{
		{r, 0, 0}, {-r, 0, 0},
		{0, r, 0}, {0, -r, 0},
		{0, 0, r}, {0, 0, -r},
	}
}

func icosahedron(size float64) []dynamo.Vec3 {
	phi := (1 + math.Sqrt(5)) / 2
	scale := size / 2 / math.Sqrt(1+phi*phi)
	raw := []dynamo.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	for i := range raw {
		raw[i] = raw[i].Mul(scale)
	}
	return raw
}

// Grid is a flat square patch in the XZ plane with (divisions+1)² vertices.
func Grid(size float64, divisions int) []dynamo.Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	step := size / float64(divisions)
	h := size / 2
	vs := make([]dynamo.Vec3, 0, (divisions+1)*(divisions+1))
	for i := 0; i <= divisions; i++ {
		for j := 0; j <= divisions; j++ {
			vs = append(vs, dynamo.Vec3{-h + float64(j)*step, 0, -h + float64(i)*step})
		}
	}
	return vs
}
