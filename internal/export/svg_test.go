package export

import (
	"strings"
	"testing"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/viz"
)

func TestRestEdges(t *testing.T) {
	frame := []dynamo.Vec3{{0, 0, 0}, {3, 4, 0}, {0, 0, 1}}
	edges := RestEdges(frame)
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
	if edges[0].A != 0 || edges[0].B != 1 || edges[0].RestLength != 5 {
		t.Errorf("unexpected first edge %+v", edges[0])
	}
}

func TestFrameToSVG(t *testing.T) {
	m, err := mesh.Shape("cube", 1)
	if err != nil {
		t.Fatal(err)
	}
	frame := m.WorldVertices()

	cam := viz.NewCamera()
	cam.Frame(mesh.Bounds(frame))
	cam.Settle()

	out := FrameToSVG(frame, RestEdges(frame), dynamo.DefaultPlane(), cam, 400, 300)
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if got := strings.Count(out, "<circle"); got != len(frame) {
		t.Errorf("expected %d vertices, got %d", len(frame), got)
	}
	if !strings.Contains(out, bodyStroke) || !strings.Contains(out, planeStroke) {
		t.Error("expected both body and plane strokes")
	}

	if FrameToSVG(nil, nil, dynamo.DefaultPlane(), cam, 400, 300) != "" {
		t.Error("empty frame should render empty")
	}
}

func TestSeriesToSVG(t *testing.T) {
	out := SeriesToSVG([]float64{0, 1, 2}, []float64{1, 0, 1}, 200, 100, "#fff")
	if strings.Count(out, " L") != 2 {
		t.Errorf("expected 3 path points, got\n%s", out)
	}
	if SeriesToSVG([]float64{0}, []float64{1}, 200, 100, "#fff") != "" {
		t.Error("single point should render empty")
	}
}
