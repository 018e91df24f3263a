package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/integrators"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/softbody"
	"gopkg.in/yaml.v3"
)

const (
	DefaultShape       = "cube"
	DefaultSize        = 1.0
	DefaultDt          = 0.002
	DefaultDuration    = 5.0
	DefaultIntegrator  = "symplectic"
	DefaultRecordEvery = 5
	DefaultLift        = 2.0
)

type Config struct {
	Shape       string          `yaml:"shape"`
	Size        float64         `yaml:"size"`
	MeshPath    string          `yaml:"mesh_path,omitempty"`
	Transform   TransformConfig `yaml:"transform"`
	Dt          float64         `yaml:"dt"`
	Duration    float64         `yaml:"duration"`
	Integrator  string          `yaml:"integrator"`
	Workers     int             `yaml:"workers"`
	RecordEvery int             `yaml:"record_every"`
	Physics     PhysicsConfig   `yaml:"physics"`
	Plane       PlaneConfig     `yaml:"plane"`
}

type TransformConfig struct {
	Translation dynamo.Vec3 `yaml:"translation,flow"`
	RotationDeg dynamo.Vec3 `yaml:"rotation_deg,flow"`
	Scale       dynamo.Vec3 `yaml:"scale,flow"`
}

type PhysicsConfig struct {
	ParticleMass          float64     `yaml:"particle_mass"`
	SpringKs              float64     `yaml:"spring_ks"`
	SpringKd              float64     `yaml:"spring_kd"`
	ContactKs             float64     `yaml:"contact_ks"`
	ContactKd             float64     `yaml:"contact_kd"`
	UseGravity            bool        `yaml:"use_gravity"`
	Gravity               dynamo.Vec3 `yaml:"gravity,flow"`
	HandlePlaneCollisions bool        `yaml:"handle_plane_collisions"`
}

// PlaneConfig describes an optional external plane frame. When disabled the
// body collides with the horizontal plane through the origin. RotationDeg
// tilts the up vector with the same Euler convention as the mesh transform.
type PlaneConfig struct {
	Enabled     bool        `yaml:"enabled"`
	Position    dynamo.Vec3 `yaml:"position,flow"`
	Up          dynamo.Vec3 `yaml:"up,flow"`
	RotationDeg dynamo.Vec3 `yaml:"rotation_deg,flow"`
}

// Transform returns the plane frame as a transform whose local +Y axis is
// the configured up vector, rotated by RotationDeg.
func (p PlaneConfig) Transform() mesh.Transform {
	t := mesh.NewTransform(p.Position, p.RotationDeg, dynamo.Vec3{1, 1, 1})
	t.Rotation = t.Rotation.Mul(mgl64.QuatBetweenVectors(dynamo.Up, p.Up))
	t.Scale[1] = p.Up.Len()
	return t
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Shape:       DefaultShape,
		Size:        DefaultSize,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Integrator:  DefaultIntegrator,
		RecordEvery: DefaultRecordEvery,
		Transform: TransformConfig{
			Translation: dynamo.Vec3{0, DefaultLift, 0},
			Scale:       dynamo.Vec3{1, 1, 1},
		},
		Physics: PhysicsConfig{
			ParticleMass:          p.ParticleMass,
			SpringKs:              p.SpringKs,
			SpringKd:              p.SpringKd,
			ContactKs:             p.ContactKs,
			ContactKd:             p.ContactKd,
			UseGravity:            p.UseGravity,
			Gravity:               p.Gravity,
			HandlePlaneCollisions: p.HandlePlaneCollisions,
		},
		Plane: PlaneConfig{
			Up: dynamo.Up,
		},
	}
}

// Load reads a YAML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field needed to build and run a body. It returns
// the first problem found.
func (c *Config) Validate() error {
	if c.MeshPath == "" {
		if _, err := mesh.Shape(c.Shape, c.Size); err != nil {
			return &dynamo.ConfigError{Field: "shape", Value: c.Shape, Wrapped: err}
		}
	}
	if err := c.Transform.Build().Validate(); err != nil {
		return &dynamo.ConfigError{Field: "transform", Value: c.Transform, Wrapped: err}
	}
	if _, err := integrators.Get(c.Integrator); err != nil {
		return &dynamo.ConfigError{Field: "integrator", Value: c.Integrator, Wrapped: err}
	}
	if c.Workers < 0 {
		return &dynamo.ConfigError{Field: "workers", Value: c.Workers, Wrapped: dynamo.ErrInvalidParameter}
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := softbody.NewPlane(c.Frame()); err != nil {
		return err
	}
	return sim.ValidateConfig(c.SimConfig())
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		ContactKs:             c.Physics.ContactKs,
		ContactKd:             c.Physics.ContactKd,
		SpringKs:              c.Physics.SpringKs,
		SpringKd:              c.Physics.SpringKd,
		ParticleMass:          c.Physics.ParticleMass,
		UseGravity:            c.Physics.UseGravity,
		Gravity:               c.Physics.Gravity,
		HandlePlaneCollisions: c.Physics.HandlePlaneCollisions,
		Workers:               c.Workers,
	}
}

// Frame returns the plane frame, or nil when no external plane is set.
func (c *Config) Frame() *softbody.Frame {
	if !c.Plane.Enabled {
		return nil
	}
	if !dynamo.IsFinite(c.Plane.Up) || c.Plane.Up.Len() < 1e-12 {
		return &softbody.Frame{Position: c.Plane.Position, Up: c.Plane.Up}
	}
	t := c.Plane.Transform()
	return &softbody.Frame{Position: t.Translation, Up: t.Up()}
}

func (t TransformConfig) Build() mesh.Transform {
	return mesh.NewTransform(t.Translation, t.RotationDeg, t.Scale)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		RecordEvery: c.RecordEvery,
	}
}

// Mesh loads the configured OBJ file or builds the named shape, with the
// configured transform attached.
func (c *Config) Mesh() (*mesh.Mesh, error) {
	var (
		m   *mesh.Mesh
		err error
	)
	if c.MeshPath != "" {
		m, err = mesh.LoadOBJFile(c.MeshPath)
	} else {
		m, err = mesh.Shape(c.Shape, c.Size)
	}
	if err != nil {
		return nil, err
	}
	m.Transform = c.Transform.Build()
	return m, nil
}

// Name is a short label for the configured body, used in run metadata.
func (c *Config) Name() string {
	if c.MeshPath != "" {
		return c.MeshPath
	}
	return c.Shape
}

// Tunable lists the physics keys accepted by Set.
var Tunable = []string{"contact_kd", "contact_ks", "particle_mass", "spring_kd", "spring_ks"}

// Get reads one physics value by its YAML key.
func (c *Config) Get(name string) (float64, error) {
	switch name {
	case "particle_mass":
		return c.Physics.ParticleMass, nil
	case "spring_ks":
		return c.Physics.SpringKs, nil
	case "spring_kd":
		return c.Physics.SpringKd, nil
	case "contact_ks":
		return c.Physics.ContactKs, nil
	case "contact_kd":
		return c.Physics.ContactKd, nil
	}
	return 0, fmt.Errorf("unknown parameter: %s (tunable: %v)", name, Tunable)
}

// Set assigns one physics value by its YAML key.
func (c *Config) Set(name string, value float64) error {
	switch name {
	case "particle_mass":
		c.Physics.ParticleMass = value
	case "spring_ks":
		c.Physics.SpringKs = value
	case "spring_kd":
		c.Physics.SpringKd = value
	case "contact_ks":
		c.Physics.ContactKs = value
	case "contact_kd":
		c.Physics.ContactKd = value
	default:
		return fmt.Errorf("unknown parameter: %s (tunable: %v)", name, Tunable)
	}
	return nil
}
