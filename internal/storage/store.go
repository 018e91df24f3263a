package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
	metricsFile   = "metrics.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	Shape      string
	Dt         float64
	Duration   float64
	Integrator string
	Particles  int
	Springs    int
	Params     map[string]float64
	Plane      dynamo.Plane
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Shape      string             `json:"shape"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Particles  int                `json:"particles"`
	Springs    int                `json:"springs"`
	Steps      int                `json:"steps"`
	Frames     int                `json:"frames"`
	Params     map[string]float64 `json:"params"`
	Metrics    map[string]float64 `json:"metrics"`
	Plane      PlaneInfo          `json:"plane"`
	Error      string             `json:"error,omitempty"`
}

type PlaneInfo struct {
	Position dynamo.Vec3 `json:"position"`
	Normal   dynamo.Vec3 `json:"normal"`
}

// ContactPlane returns the stored plane, or the default plane for runs
// saved without one.
func (m *RunMetadata) ContactPlane() dynamo.Plane {
	if m.Plane.Normal.Len() == 0 {
		return dynamo.DefaultPlane()
	}
	return dynamo.Plane{Position: m.Plane.Position, Normal: m.Plane.Normal}
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(info.Shape, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Shape:      info.Shape,
		Timestamp:  now,
		Dt:         info.Dt,
		Duration:   info.Duration,
		Integrator: info.Integrator,
		Particles:  info.Particles,
		Springs:    info.Springs,
		Steps:      result.StepsTaken,
		Frames:     len(result.Frames),
		Params:     info.Params,
		Metrics:    result.Metrics,
		Plane:      PlaneInfo{Position: info.Plane.Position, Normal: info.Plane.Normal},
	}
	if len(result.Errors) > 0 {
		meta.Error = result.Errors[0].Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, positionsFile), result); err != nil {
		return "", err
	}
	if err := writeMetrics(filepath.Join(runDir, metricsFile), result); err != nil {
		return "", err
	}

	return runID, nil
}

// newRunDir creates a fresh directory named after the shape and start time,
// adding a counter when two runs start in the same second.
func (s *Store) newRunDir(shape string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", sanitize(shape), now.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func sanitize(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "_" {
		return "run"
	}
	return name
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writePositions(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.Frames) > 0 {
		header := []string{"time"}
		for i := range result.Frames[0] {
			header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i, frame := range result.Frames {
			row := []string{formatFloat(result.Times[i])}
			for _, p := range frame {
				row = append(row, formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

var metricsHeader = []string{"time", "kinetic", "elastic", "gravitational", "total", "contacts"}

func writeMetrics(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(metricsHeader); err != nil {
		return err
	}
	for i, s := range result.Samples {
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(s.Kinetic),
			formatFloat(s.Elastic),
			formatFloat(s.Gravitational),
			formatFloat(s.Total()),
			strconv.Itoa(s.Contacts),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadPositions returns the recorded frames and their times.
func (s *Store) LoadPositions(runID string) ([][]dynamo.Vec3, []float64, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]dynamo.Vec3{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	frames := make([][]dynamo.Vec3, 0, len(records)-1)

	for line, record := range records[1:] {
		if len(record) == 0 || (len(record)-1)%3 != 0 {
			return nil, nil, fmt.Errorf("%s line %d: expected time plus xyz triples, got %d fields", positionsFile, line+2, len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", positionsFile, line+2, err)
		}
		times = append(times, vals[0])

		frame := make([]dynamo.Vec3, 0, (len(vals)-1)/3)
		for j := 1; j+2 < len(vals); j += 3 {
			frame = append(frame, dynamo.Vec3{vals[j], vals[j+1], vals[j+2]})
		}
		frames = append(frames, frame)
	}

	return frames, times, nil
}

// LoadSamples returns the per-frame energy breakdown of a run.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, []float64, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, metricsFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	samples := make([]sim.Sample, 0, len(records)-1)

	for line, record := range records[1:] {
		if len(record) != len(metricsHeader) {
			return nil, nil, fmt.Errorf("%s line %d: expected %d fields, got %d", metricsFile, line+2, len(metricsHeader), len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", metricsFile, line+2, err)
		}
		times = append(times, vals[0])
		samples = append(samples, sim.Sample{
			Kinetic:       vals[1],
			Elastic:       vals[2],
			Gravitational: vals[3],
			Contacts:      int(vals[5]),
		})
	}

	return samples, times, nil
}

func parseFloats(record []string) ([]float64, error) {
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
