package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/analysis"
	"github.com/san-kum/softsim/internal/automation"
	"github.com/san-kum/softsim/internal/compute"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/experiment"
	"github.com/san-kum/softsim/internal/export"
	"github.com/san-kum/softsim/internal/integrators"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/optim"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/softbody"
	"github.com/san-kum/softsim/internal/storage"
	"github.com/san-kum/softsim/internal/tui"
	"github.com/san-kum/softsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	shape       string
	meshPath    string
	size        float64
	lift        float64
	dt          float64
	duration    float64
	integrator  string
	workers     int
	recordEvery int
	mass        float64
	springKs    float64
	springKd    float64
	contactKs   float64
	contactKd   float64
	noGravity   bool
	noContact   bool
	watch       bool
	frameRate   int
	// analysis
	fromTime    float64
	plotSVGPath string
	// snapshot
	frameIdx  int
	outPath   string
	svgWidth  int
	svgHeight int
	yaw       float64
	pitch     float64
	// tune
	tuneParams []string
	tuneMetric string
	tuneTop    int
	// bench
	benchSteps   int
	benchWorkers int
	// monte carlo
	trials     int
	jitterRot  float64
	jitterLift float64
	seed       int64
	maxSpeed   float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "softsim",
		Short: "soft body mass-spring lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunLauncher()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".softsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the body in the terminal while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --watch")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			return viz.Run(cfg)
		},
	}
	addConfigFlags(liveCmd)

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addConfigFlags(initCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and height of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotSVGPath, "svg", "", "also write the height curve as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "wobble frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&fromTime, "from", 0, "ignore samples before this time")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "height vs vertical velocity",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().Float64Var(&fromTime, "from", 0, "ignore samples before this time")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render a recorded frame to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index, negative counts from the end")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	snapshotCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	snapshotCmd.Flags().Float64Var(&yaw, "yaw", 0, "extra camera yaw (radians)")
	snapshotCmd.Flags().Float64Var(&pitch, "pitch", 0, "extra camera pitch (radians)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export particle positions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [shape]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shapes := config.PresetShapes()
			if len(args) == 1 {
				shapes = args
			}
			for _, s := range shapes {
				presets := config.ListPresets(s)
				if len(presets) == 0 {
					fmt.Printf("no presets for shape: %s\n", s)
					continue
				}
				fmt.Printf("presets for %s:\n", s)
				for _, p := range presets {
					fmt.Printf("  %s/%s\n", s, p)
				}
			}
			return nil
		},
	}

	shapesCmd := &cobra.Command{
		Use:   "shapes",
		Short: "list built-in shapes and integrators",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("shapes:")
			for _, s := range mesh.ShapeNames() {
				fmt.Printf("  %s\n", s)
			}
			fmt.Println("integrators:")
			for _, n := range integrators.Names() {
				fmt.Printf("  %s\n", n)
			}
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same body",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark spring backends over particle counts",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "ticks per measurement")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", runtime.NumCPU(), "parallel backend workers")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search physics values",
		Long:  "grid search physics values, e.g. --param contact_ks=500,1000,4000 --param contact_kd=5,20",
		Args:  cobra.NoArgs,
		RunE:  tuneParamsCmd,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_penetration", "metric to minimise")
	tuneCmd.Flags().IntVar(&tuneTop, "top", 5, "candidates to show")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a drop with random orientation and height",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&jitterRot, "rotation", 30, "max rotation perturbation per axis (degrees)")
	monteCarloCmd.Flags().Float64Var(&jitterLift, "jitter-lift", 0.5, "max drop height perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().Float64Var(&maxSpeed, "max-speed", 50, "speed treated as unstable")

	rootCmd.AddCommand(runCmd, liveCmd, initCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, snapshotCmd,
		exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, shapesCmd, compareCmd, benchCmd, tuneCmd,
		scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration (shape/name)")
	f.StringVar(&shape, "shape", config.DefaultShape, "built-in shape")
	f.StringVar(&meshPath, "mesh", "", "OBJ file to load instead of a shape")
	f.Float64Var(&size, "size", config.DefaultSize, "shape size")
	f.Float64Var(&lift, "lift", config.DefaultLift, "drop height of the mesh origin")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.IntVar(&workers, "workers", 0, "spring workers (0 or 1 is serial)")
	f.IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record one frame every n ticks")

	p := dynamo.DefaultParams()
	f.Float64Var(&mass, "mass", p.ParticleMass, "particle mass")
	f.Float64Var(&springKs, "spring-ks", p.SpringKs, "spring stiffness")
	f.Float64Var(&springKd, "spring-kd", p.SpringKd, "spring damping")
	f.Float64Var(&contactKs, "contact-ks", p.ContactKs, "contact stiffness")
	f.Float64Var(&contactKd, "contact-kd", p.ContactKd, "contact damping")
	f.BoolVar(&noGravity, "no-gravity", false, "disable gravity")
	f.BoolVar(&noContact, "no-contact", false, "disable plane collisions")
}

// buildConfig layers a preset, then a config file, then any flag the user
// set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		s, name, ok := strings.Cut(preset, "/")
		if !ok {
			s, name = shape, preset
		}
		p := config.GetPreset(s, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available for %s: %v)", preset, s, config.ListPresets(s))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("shape") {
		cfg.Shape = shape
		cfg.MeshPath = ""
	}
	if flags.Changed("mesh") {
		cfg.MeshPath = meshPath
	}
	if flags.Changed("size") {
		cfg.Size = size
	}
	if flags.Changed("lift") {
		cfg.Transform.Translation[1] = lift
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("mass") {
		cfg.Physics.ParticleMass = mass
	}
	if flags.Changed("spring-ks") {
		cfg.Physics.SpringKs = springKs
	}
	if flags.Changed("spring-kd") {
		cfg.Physics.SpringKd = springKd
	}
	if flags.Changed("contact-ks") {
		cfg.Physics.ContactKs = contactKs
	}
	if flags.Changed("contact-kd") {
		cfg.Physics.ContactKd = contactKd
	}
	if noGravity {
		cfg.Physics.UseGravity = false
	}
	if noContact {
		cfg.Physics.HandlePlaneCollisions = false
	}

	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s simulation (%d particles, %d springs)...\n", cfg.Name(), exp.Body().Len(), exp.Body().SpringCount())
	if watch {
		renderer := tui.NewLiveRenderer(cfg.Name(), frameRate)
		exp.Simulator().AddObserver(renderer)
		renderer.Start()
		defer renderer.Stop()
	}
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", len(result.Frames))
	if result.Diverged() {
		fmt.Printf("diverged: %v\n", result.Errors[0])
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSHAPE\tTIME\tDURATION\tDT\tINTEG\tPARTICLES\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%s\n",
			run.ID,
			run.Shape,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Particles,
			status,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, [][]dynamo.Vec3, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}

	frames, times, err := st.LoadPositions(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, frames, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	meta, frames, times, err := loadRun(runID)
	if err != nil {
		return err
	}

	samples, _, err := storage.New(dataDir).LoadSamples(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("shape: %s\n", meta.Shape)
	fmt.Printf("samples: %d\n\n", len(frames))

	kinetic := make([]float64, len(samples))
	elastic := make([]float64, len(samples))
	total := make([]float64, len(samples))
	for i, s := range samples {
		kinetic[i] = s.Kinetic
		elastic[i] = s.Elastic
		total[i] = s.Total()
	}

	heights := analysis.CentroidHeights(frames, meta.ContactPlane().Normal)
	series := []struct {
		caption string
		data    []float64
	}{
		{"centroid height", heights},
		{"total energy", total},
		{"kinetic energy", kinetic},
		{"elastic energy", elastic},
		{"spread (1 = rest size)", analysis.Spread(frames)},
	}

	for _, s := range series {
		if len(s.data) == 0 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if plotSVGPath != "" {
		svg := export.SeriesToSVG(times, heights, 800, 300, "#00d7ff")
		if err := os.WriteFile(plotSVGPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotSVGPath)
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(times) < 4 {
		return fmt.Errorf("need at least 4 frames, got %d", len(times))
	}

	heights := analysis.CentroidHeights(frames, meta.ContactPlane().Normal)
	data, ts := analysis.Tail(heights, times, fromTime)
	if len(data) < 4 {
		return fmt.Errorf("fewer than 4 frames after t=%.3f", fromTime)
	}
	sampleDt := (ts[len(ts)-1] - ts[0]) / float64(len(ts)-1)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("shape: %s\n", meta.Shape)
	fmt.Printf("samples: %d (every %.4fs)\n\n", len(data), sampleDt)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(plotData) > 8 {
		plotData = ps[:len(ps)/2]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (centroid height)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz (power %.4f)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	spread := analysis.Spread(frames)
	lo, hi := spread[0], spread[0]
	for _, s := range spread {
		lo, hi = min(lo, s), max(hi, s)
	}
	fmt.Printf("spread: min %.3f max %.3f\n", lo, hi)

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, frames, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	heights, ts := analysis.Tail(analysis.CentroidHeights(frames, meta.ContactPlane().Normal), times, fromTime)
	if len(heights) < 2 {
		return fmt.Errorf("not enough frames to plot")
	}
	velocities := analysis.Derivative(heights, ts)

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("shape: %s\n", meta.Shape)
	fmt.Printf("x-axis: centroid height, y-axis: vertical velocity\n\n")

	portrait := analysis.NewPhasePortrait("height", heights, "velocity", velocities)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	return nil
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	meta, frames, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	idx := frameIdx
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (0..%d)", frameIdx, len(frames)-1)
	}
	frame := frames[idx]

	cam := viz.NewCamera()
	lo, hi := mesh.Bounds(frame)
	cam.Frame(lo, hi)
	cam.RotateYaw(yaw)
	cam.RotatePitch(pitch)
	cam.Settle()

	svg := export.FrameToSVG(frame, export.RestEdges(frames[0]), meta.ContactPlane(), cam, svgWidth, svgHeight)
	if outPath == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote frame %d to %s\n", idx, outPath)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, frames, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		return storage.ExportJSONFile(outPath, data)
	}
	return storage.ExportJSON(os.Stdout, data)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", cfg.Name(), cfg.Dt, cfg.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "final_y", "energy_drift", "max_pen", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range args {
		c := *cfg
		c.Integrator = name

		exp, err := experiment.New(&c)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		if result.Diverged() {
			fmt.Printf("%-12s  diverged at step %d\n", name, result.StepsTaken)
			continue
		}

		finalY := mesh.Centroid(result.Final()).Dot(dynamo.Up)
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.6f  %12.2f\n", name, finalY,
			result.Metrics["energy_drift"], result.Metrics["max_penetration"],
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func benchBackends(cmd *cobra.Command, args []string) error {
	divisions := []int{2, 4, 6, 8, 10}
	backends := []compute.Backend{compute.NewSerial(), compute.NewParallel(max(benchWorkers, 2))}
	const benchDt = 0.001

	fmt.Printf("benchmarking %d ticks per grid\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tSPRINGS\tBACKEND\tTIME\tSTEPS/SEC")

	for _, d := range divisions {
		positions := mesh.Grid(1, d)
		for i := range positions {
			positions[i] = positions[i].Add(dynamo.Vec3{0, 1, 0})
		}

		for _, backend := range backends {
			body, err := softbody.New(positions, dynamo.DefaultParams(), softbody.WithBackend(backend))
			if err != nil {
				return err
			}

			s := sim.New(body)
			cfg := sim.Config{Dt: benchDt, Duration: float64(benchSteps) * benchDt}

			start := time.Now()
			result, err := s.Run(context.Background(), cfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%s\t%v\t%.0f\n",
				body.Len(), body.SpringCount(), backend.Name(), elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

// parseParam reads "name=v1,v2,...".
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q, want name=v1,v2", s)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value in --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func tuneParamsCmd(cmd *cobra.Command, args []string) error {
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (tunable: %v)", config.Tunable)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	for _, p := range tuneParams {
		name, values, err := parseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("tuning %v on %s by %s\n\n", names, cfg.Name(), tuneMetric)
	start := time.Now()
	candidates, err := gs.Search(ctx, cfg, tuneMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(tuneMetric))
	for i, c := range candidates {
		if i >= tuneTop {
			break
		}
		row := make([]string, len(names))
		for j, n := range names {
			row[j] = strconv.FormatFloat(c.Params[n], 'g', -1, 64)
		}
		value := fmt.Sprintf("%.6f", c.Value)
		if c.Diverged {
			value = "diverged"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, strings.Join(row, "\t"), value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d candidates in %v\n", len(candidates), time.Since(start))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}

	results, err := automation.RunScenario(ctx, scenario, st)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTEPS\tENERGY DRIFT\tSTATUS")
	for i, r := range results {
		status := "ok"
		if r.Result.Diverged() {
			status = "diverged"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2e\t%s\n", i+1, r.RunID, r.Result.StepsTaken, r.Result.Metrics["energy_drift"], status)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("monte carlo: %d drops of %s\n\n", trials, cfg.Name())
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:        cfg,
		RotationDeg: jitterRot,
		Lift:        jitterLift,
		NumTrials:   trials,
		Seed:        seed,
		MaxSpeed:    maxSpeed,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tROTATION\tLIFT\tFINAL HEIGHT\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.1f,%.1f,%.1f\t%+.3f\t%.3f\t%v\n", r.TrialID,
			r.RotationDeg[0], r.RotationDeg[1], r.RotationDeg[2], r.Lift, r.FinalHeight, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}
