package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/softsim/internal/dynamo"
)

type ExportData struct {
	Shape      string             `json:"shape"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Particles  int                `json:"particles"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Frames     [][][3]float64     `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Export gathers a stored run into a single document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, times, err := s.LoadPositions(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Shape:      meta.Shape,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Particles:  meta.Particles,
		Steps:      meta.Steps,
		Times:      times,
		Frames:     make([][][3]float64, len(frames)),
		Metrics:    meta.Metrics,
	}
	for i, frame := range frames {
		data.Frames[i] = make([][3]float64, len(frame))
		for j, p := range frame {
			data.Frames[i][j] = p
		}
	}
	return data, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, data)
}

// ExportCSV writes one row per particle per frame, which is easier to load
// into plotting tools than the wide positions.csv layout.
func ExportCSV(w io.Writer, frames [][]dynamo.Vec3, times []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "particle", "x", "y", "z"}); err != nil {
		return err
	}
	for i, frame := range frames {
		t := formatFloat(times[i])
		for j, p := range frame {
			row := []string{t, strconv.Itoa(j), formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2])}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
