// Package dynamo provides the core data model for soft-body simulation.
//
// The package defines the value types shared by every stage of a tick:
//
//   - [Particle]: point mass derived from one mesh vertex
//   - [Spring]: half-edge record owned by the lower-index particle
//   - [Plane]: static contact surface
//   - [Params]: global physical parameters
//   - [Snapshot]: read-only export of a body for metrics and visualization
//
// and the interfaces that plug into a tick:
//
//   - [Integrator]: turns accumulated force into new velocity and position
//   - [Metric]: accumulates a scalar over a run
//   - [Observer]: receives a snapshot after each tick
//
// # Example
//
//	params := dynamo.DefaultParams()
//	body, _ := softbody.New(mesh.WorldVertices(), params)
//	for i := 0; i < 100; i++ {
//	    _ = body.Step(0.002)
//	}
//
// # Thread Safety
//
// Particles are owned by a single body. None of the types in this package
// synchronize access.
package dynamo
