package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/experiment"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/softbody"
	"github.com/san-kum/softsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset ("shape/name"), a config file, or the
// defaults, in that order, and then applies its own overrides.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// StepResult pairs a finished step with the run id it was stored under.
type StepResult struct {
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Build resolves the step into a validated configuration.
func (s ScenarioStep) Build() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		shape, name, ok := splitPreset(s.Preset)
		if !ok {
			return nil, fmt.Errorf("preset %q must be shape/name", s.Preset)
		}
		if cfg = config.GetPreset(shape, name); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	case s.Config != "":
		var err error
		if cfg, err = config.Load(s.Config); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	for k, v := range s.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func splitPreset(s string) (string, string, bool) {
	shape, name, ok := strings.Cut(s, "/")
	return shape, name, ok && shape != "" && name != ""
}

// RunScenario executes the steps in order. Steps are saved to st when it is
// non-nil; SaveAs replaces the shape name in the run id.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Build()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Name())

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Result: result}
		if st != nil {
			info := exp.Info()
			if step.SaveAs != "" {
				info.Shape = step.SaveAs
			}
			if sr.RunID, err = st.Save(info, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig drops the same body repeatedly with its orientation and
// drop height randomly perturbed.
type MonteCarloConfig struct {
	Base        *config.Config
	RotationDeg float64 // max perturbation per axis
	Lift        float64 // max perturbation of the drop height
	NumTrials   int
	Seed        int64
	MaxSpeed    float64
}

type MonteCarloResult struct {
	TrialID     int
	RotationDeg dynamo.Vec3
	Lift        float64
	FinalHeight float64
	// Stable is false when the run diverged or a particle exceeded MaxSpeed.
	Stable bool
}

// RunMonteCarlo runs all trials concurrently through a sim.Ensemble.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs a base config and at least one trial")
	}
	maxSpeed := cfg.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = 50
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	jitter := func(amount float64) float64 { return (rng.Float64() - 0.5) * 2 * amount }

	results := make([]MonteCarloResult, cfg.NumTrials)
	factories := make([]sim.Factory, cfg.NumTrials)
	for trial := range factories {
		trialCfg := *cfg.Base
		rot := dynamo.Vec3{jitter(cfg.RotationDeg), jitter(cfg.RotationDeg), jitter(cfg.RotationDeg)}
		lift := jitter(cfg.Lift)
		trialCfg.Transform.RotationDeg = trialCfg.Transform.RotationDeg.Add(rot)
		trialCfg.Transform.Translation = trialCfg.Transform.Translation.Add(dynamo.Up.Mul(lift))

		results[trial] = MonteCarloResult{TrialID: trial, RotationDeg: rot, Lift: lift}
		factories[trial] = func() (*softbody.Body, error) {
			exp, err := experiment.New(&trialCfg)
			if err != nil {
				return nil, fmt.Errorf("trial %d: %w", trial, err)
			}
			return exp.Body(), nil
		}
	}

	ens := sim.NewEnsemble(factories, func() []dynamo.Metric {
		return []dynamo.Metric{metrics.NewStability(maxSpeed)}
	})
	runs, err := ens.Run(ctx, cfg.Base.SimConfig())
	if err != nil {
		return nil, err
	}

	for i, r := range runs {
		results[i].Stable = !r.Diverged() && r.Metrics["stability"] == 1
		if final := r.Final(); final != nil {
			results[i].FinalHeight = mesh.Centroid(final).Dot(dynamo.Up)
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
