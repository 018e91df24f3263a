package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/integrators"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/softbody"
	"github.com/san-kum/softsim/internal/storage"
)

// Experiment is a body built from a configuration together with the mesh it
// came from and the simulator that drives it.
type Experiment struct {
	cfg       *config.Config
	mesh      *mesh.Mesh
	body      *softbody.Body
	simulator *sim.Simulator
}

// New validates cfg and builds the mesh, body and simulator. The default
// metrics are attached.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := cfg.Mesh()
	if err != nil {
		return nil, fmt.Errorf("build mesh: %w", err)
	}

	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	body, err := softbody.New(m.WorldVertices(), cfg.Params(),
		softbody.WithPlane(cfg.Frame()),
		softbody.WithIntegrator(integ),
	)
	if err != nil {
		return nil, err
	}

	simulator := sim.New(body)
	for _, metric := range metrics.Defaults(body.Params().Gravity) {
		simulator.AddMetric(metric)
	}

	return &Experiment{
		cfg:       cfg,
		mesh:      m,
		body:      body,
		simulator: simulator,
	}, nil
}

// Run drives the body for the configured duration and copies the final
// positions back into the mesh.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	result, err := e.simulator.Run(ctx, e.cfg.SimConfig())
	if err != nil {
		return result, err
	}
	if err := e.SyncMesh(); err != nil {
		return result, err
	}
	return result, nil
}

// SyncMesh writes the body's world positions into the mesh as local
// vertices.
func (e *Experiment) SyncMesh() error {
	return e.mesh.SetWorldVertices(e.body.Positions())
}

// Info describes the experiment for run storage.
func (e *Experiment) Info() storage.RunInfo {
	return storage.RunInfo{
		Shape:      e.cfg.Name(),
		Dt:         e.cfg.Dt,
		Duration:   e.cfg.Duration,
		Integrator: e.body.Integrator().Name(),
		Particles:  e.body.Len(),
		Springs:    e.body.SpringCount(),
		Params:     e.body.GetParams(),
		Plane:      e.body.Plane(),
	}
}

func (e *Experiment) Config() *config.Config   { return e.cfg }
func (e *Experiment) Mesh() *mesh.Mesh          { return e.mesh }
func (e *Experiment) Body() *softbody.Body      { return e.body }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
