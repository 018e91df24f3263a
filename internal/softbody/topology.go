package softbody

import "github.com/san-kum/softsim/internal/dynamo"

// SpringCount is the number of springs a complete graph on n particles has.
func SpringCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// buildParticles creates one particle per position and connects each pair
// (i, j) with i < j by a spring owned by i. Rest lengths are measured here
// and never change.
func buildParticles(positions []dynamo.Vec3, params dynamo.Params) []dynamo.Particle {
	n := len(positions)
	ps := make([]dynamo.Particle, n)

	for i, pos := range positions {
		ps[i] = dynamo.Particle{
			Position: pos,
			Mass:     params.ParticleMass,
			Contact: dynamo.ContactSpring{
				Ks: params.ContactKs,
				Kd: params.ContactKd,
			},
			Springs: make([]dynamo.Spring, 0, n-i-1),
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ps[i].Springs = append(ps[i].Springs, dynamo.Spring{
				Ks:         params.SpringKs,
				Kd:         params.SpringKd,
				RestLength: ps[j].Position.Sub(ps[i].Position).Len(),
				Other:      j,
			})
		}
	}

	return ps
}
