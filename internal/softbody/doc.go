// Package softbody implements a mass-spring soft body driven by a fixed
// timestep.
//
// A [Body] is built once from world-space vertex positions. Every unordered
// pair of particles is joined by exactly one spring owned by the lower
// index, so memory and per-tick spring work grow as O(N²). This is the
// intended scaling limit for small meshes, not a defect.
//
// Each call to [Body.Step] runs the passes in a fixed order:
//
//	reset forces -> gravity -> springs -> plane contact -> integrate
//
// Contact against the single static plane uses a penalty spring: a
// penetrating particle is pushed out proportionally to its depth, so short
// overlaps are expected and resolve over the following ticks.
package softbody
