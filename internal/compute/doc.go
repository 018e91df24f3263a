// Package compute provides backends for the spring pass of a tick.
//
// Two backends evaluate the same forces:
//
//   - [Serial]: single goroutine, springs visited in owner order
//   - [Parallel]: owners partitioned across workers
//
// Each spring writes to two particles, so the parallel backend never writes
// accumulators directly. Every worker fills its own force buffer and the
// buffers are merged into the particles after all workers finish.
//
//	backend := compute.NewBackend(runtime.NumCPU())
//	backend.SpringForces(particles)
package compute
