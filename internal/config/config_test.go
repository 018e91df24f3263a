package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/softsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Shape != "cube" {
		t.Errorf("expected shape cube, got %s", cfg.Shape)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Params() != withWorkers(dynamo.DefaultParams(), 0) {
		t.Errorf("default params mismatch: %+v", cfg.Params())
	}
	if cfg.Frame() != nil {
		t.Error("plane frame should be nil when disabled")
	}
}

func withWorkers(p dynamo.Params, w int) dynamo.Params {
	p.Workers = w
	return p
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "softsim.yaml")

	cfg := DefaultConfig()
	cfg.Shape = "octahedron"
	cfg.Physics.SpringKs = 321
	cfg.Plane = PlaneConfig{Enabled: true, Position: dynamo.Vec3{0, -1, 0}, Up: dynamo.Vec3{0, 2, 0}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	data := []byte("shape: grid\nphysics:\n  spring_ks: 55\nplane:\n  enabled: true\n  up: [0, 1, 1]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Shape != "grid" || cfg.Physics.SpringKs != 55 {
		t.Errorf("explicit keys not applied: %+v", cfg)
	}
	if cfg.Physics.ContactKs != 1000 || cfg.Dt != DefaultDt {
		t.Errorf("omitted keys should keep defaults: %+v", cfg)
	}
	if cfg.Plane.Up != (dynamo.Vec3{0, 1, 1}) {
		t.Errorf("plane up: got %v", cfg.Plane.Up)
	}
	if cfg.Frame() == nil {
		t.Error("expected plane frame")
	}
}

func TestFrameRotation(t *testing.T) {
	tests := []struct {
		name  string
		plane PlaneConfig
		want  dynamo.Vec3
	}{
		{"unrotated", PlaneConfig{Up: dynamo.Vec3{0, 2, 0}}, dynamo.Vec3{0, 2, 0}},
		{"tilted up", PlaneConfig{Up: dynamo.Vec3{0, 1, 1}}, dynamo.Vec3{0, 1, 1}},
		{"roll 90", PlaneConfig{Up: dynamo.Up, RotationDeg: dynamo.Vec3{0, 0, 90}}, dynamo.Vec3{-1, 0, 0}},
		{"pitch 90", PlaneConfig{Up: dynamo.Up, RotationDeg: dynamo.Vec3{90, 0, 0}}, dynamo.Vec3{0, 0, 1}},
		{"upside down", PlaneConfig{Up: dynamo.Vec3{0, -1, 0}}, dynamo.Vec3{0, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Plane = tt.plane
			cfg.Plane.Enabled = true
			cfg.Plane.Position = dynamo.Vec3{0, -1, 0}

			f := cfg.Frame()
			if f.Up.Sub(tt.want).Len() > 1e-9 {
				t.Errorf("up: got %v, want %v", f.Up, tt.want)
			}
			if f.Position != (dynamo.Vec3{0, -1, 0}) {
				t.Errorf("position: got %v", f.Position)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dt: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
		want error
	}{
		{"zero mass", func(c *Config) { c.Physics.ParticleMass = 0 }, dynamo.ErrNonPositiveMass},
		{"negative mass", func(c *Config) { c.Physics.ParticleMass = -2 }, dynamo.ErrNonPositiveMass},
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrInvalidTimestep},
		{"zero duration", func(c *Config) { c.Duration = 0 }, dynamo.ErrInvalidParameter},
		{"negative workers", func(c *Config) { c.Workers = -1 }, dynamo.ErrInvalidParameter},
		{"degenerate plane", func(c *Config) {
			c.Plane = PlaneConfig{Enabled: true, Up: dynamo.Vec3{}}
		}, dynamo.ErrDegenerateNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	others := map[string]func(c *Config){
		"unknown shape":      func(c *Config) { c.Shape = "torus" },
		"unknown integrator": func(c *Config) { c.Integrator = "rk4" },
		"zero scale":         func(c *Config) { c.Transform.Scale = dynamo.Vec3{1, 0, 1} },
	}
	for name, edit := range others {
		cfg := DefaultConfig()
		edit(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestMesh(t *testing.T) {
	cfg := DefaultConfig()
	m, err := cfg.Mesh()
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	if len(m.Vertices) != 8 {
		t.Errorf("expected 8 cube vertices, got %d", len(m.Vertices))
	}
	for _, v := range m.WorldVertices() {
		if v[1] < DefaultLift-0.5-1e-9 {
			t.Errorf("vertex %v below lifted cube", v)
		}
	}

	cfg.MeshPath = filepath.Join(t.TempDir(), "missing.obj")
	if _, err := cfg.Mesh(); err == nil {
		t.Error("expected error for missing OBJ")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cube", "drop")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Transform.Translation[1] != 1.5 {
		t.Errorf("expected lift 1.5, got %f", cfg.Transform.Translation[1])
	}

	cfg.Duration = 99
	if GetPreset("cube", "drop").Duration == 99 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("cube", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "drop"); cfg != nil {
		t.Error("expected nil for nonexistent shape")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, shape := range PresetShapes() {
		names := ListPresets(shape)
		if len(names) == 0 {
			t.Errorf("expected presets for %s", shape)
		}
		for _, name := range names {
			if err := GetPreset(shape, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", shape, name, err)
			}
		}
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent shape")
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	for i, name := range Tunable {
		if err := cfg.Set(name, float64(i+2)); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	p := cfg.Params()
	if p.ContactKd != 2 || p.ContactKs != 3 || p.ParticleMass != 4 || p.SpringKd != 5 || p.SpringKs != 6 {
		t.Errorf("values not applied: %+v", p)
	}
	if v, err := cfg.Get("spring_ks"); err != nil || v != 6 {
		t.Errorf("get spring_ks: %v %v", v, err)
	}
	if _, err := cfg.Get("gravity"); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if err := cfg.Set("gravity", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
