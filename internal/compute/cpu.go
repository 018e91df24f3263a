package compute

import (
	"github.com/san-kum/softsim/internal/dynamo"
)

type Serial struct{}

func NewSerial() *Serial { return &Serial{} }

func (s *Serial) Name() string { return "serial" }

func (s *Serial) SpringForces(ps []dynamo.Particle) {
	for i := range ps {
		a := &ps[i]
		for _, sp := range a.Springs {
			b := &ps[sp.Other]
			f, ok := SpringForce(a, b, sp)
			if !ok {
				continue
			}
			a.Force = a.Force.Add(f)
			b.Force = b.Force.Sub(f)
		}
	}
}

// minOwners is the smallest number of owning particles worth a goroutine.
const minOwners = 8

type Parallel struct {
	workers int
	buffers [][]dynamo.Vec3
	bounds  []int
}

func NewParallel(workers int) *Parallel {
	if workers < 1 {
		workers = 1
	}
	return &Parallel{workers: workers}
}

func (p *Parallel) Name() string { return "parallel" }

func (p *Parallel) Workers() int { return p.workers }

func (p *Parallel) ensureBuffers(n int) {
	if len(p.buffers) == p.workers && len(p.buffers[0]) == n {
		for _, buf := range p.buffers {
			for i := range buf {
				buf[i] = dynamo.Vec3{}
			}
		}
		return
	}
	p.buffers = make([][]dynamo.Vec3, p.workers)
	for w := range p.buffers {
		p.buffers[w] = make([]dynamo.Vec3, n)
	}
}

// balancedBounds splits the owners of ps into at most parts contiguous
// ranges holding roughly equal numbers of springs. Range c is
// [bounds[c], bounds[c+1]).
func balancedBounds(bounds []int, ps []dynamo.Particle, parts int) []int {
	total := 0
	for i := range ps {
		total += len(ps[i].Springs)
	}

	bounds = append(bounds[:0], 0)
	acc := 0
	for i := range ps {
		acc += len(ps[i].Springs)
		if len(bounds) < parts && acc*parts >= total*len(bounds) {
			bounds = append(bounds, i+1)
		}
	}
	if bounds[len(bounds)-1] != len(ps) {
		bounds = append(bounds, len(ps))
	}
	return bounds
}

func (p *Parallel) SpringForces(ps []dynamo.Particle) {
	n := len(ps)
	if n == 0 {
		return
	}
	p.ensureBuffers(n)

	// owner i holds n-i-1 springs in a complete graph, so ranges are cut by
	// spring count rather than owner count
	parts := min(p.workers, max(1, n/minOwners))
	p.bounds = balancedBounds(p.bounds, ps, parts)
	chunks := len(p.bounds) - 1

	dynamo.ParallelFor(chunks, chunks, 1, func(_, start, end int) {
		for c := start; c < end; c++ {
			buf := p.buffers[c]
			for i := p.bounds[c]; i < p.bounds[c+1]; i++ {
				a := &ps[i]
				for _, sp := range a.Springs {
					f, ok := SpringForce(a, &ps[sp.Other], sp)
					if !ok {
						continue
					}
					buf[i] = buf[i].Add(f)
					buf[sp.Other] = buf[sp.Other].Sub(f)
				}
			}
		}
	})

	for _, buf := range p.buffers[:chunks] {
		for i := range ps {
			ps[i].Force = ps[i].Force.Add(buf[i])
		}
	}
}
