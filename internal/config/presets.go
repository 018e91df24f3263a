package config

import (
	"sort"

	"github.com/san-kum/softsim/internal/dynamo"
)

func preset(shape string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Shape = shape
	edit(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"cube": {
		"drop": preset("cube", func(c *Config) {
			c.Transform.Translation = dynamo.Vec3{0, 1.5, 0}
			c.Duration = 3.0
		}),
		"float": preset("cube", func(c *Config) {
			c.Physics.UseGravity = false
			c.Transform.RotationDeg = dynamo.Vec3{30, 45, 0}
			c.Duration = 2.0
		}),
		"spin-drop": preset("cube", func(c *Config) {
			c.Transform.Translation = dynamo.Vec3{0, 2.5, 0}
			c.Transform.RotationDeg = dynamo.Vec3{35, 0, 20}
			c.Physics.SpringKs = 200
			c.Duration = 4.0
		}),
	},
	"tetrahedron": {
		"tilted-floor": preset("tetrahedron", func(c *Config) {
			c.Transform.Translation = dynamo.Vec3{0, 1.5, 0}
			c.Plane = PlaneConfig{Enabled: true, Up: dynamo.Up, RotationDeg: dynamo.Vec3{0, 0, -15}}
			c.Duration = 4.0
		}),
	},
	"grid": {
		"drape": preset("grid", func(c *Config) {
			c.Size = 2.0
			c.Transform.Translation = dynamo.Vec3{0, 1, 0}
			c.Physics.SpringKs = 40
			c.Physics.SpringKd = 0.5
			c.RecordEvery = 10
		}),
	},
	"octahedron": {
		"stiff": preset("octahedron", func(c *Config) {
			c.Physics.SpringKs = 2000
			c.Physics.SpringKd = 5
			c.Physics.ContactKs = 5000
			c.Physics.ContactKd = 50
			c.Dt = 0.001
			c.RecordEvery = 10
			c.Duration = 3.0
		}),
	},
	"icosahedron": {
		"bounce": preset("icosahedron", func(c *Config) {
			c.Transform.Translation = dynamo.Vec3{0, 3, 0}
			c.Physics.ContactKd = 2
			c.Duration = 4.0
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(shape, name string) *Config {
	shapePresets, ok := Presets[shape]
	if !ok {
		return nil
	}
	cfg, ok := shapePresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(shape string) []string {
	shapePresets, ok := Presets[shape]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(shapePresets))
	for name := range shapePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetShapes lists the shapes that have at least one preset.
func PresetShapes() []string {
	shapes := make([]string, 0, len(Presets))
	for s := range Presets {
		shapes = append(shapes, s)
	}
	sort.Strings(shapes)
	return shapes
}
