package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/viz"
)

const (
	background  = "#0a0a0a"
	bodyStroke  = "#00d7ff"
	planeStroke = "#3a3a3a"
)

// RestEdges treats frame as the rest configuration and returns the complete
// spring graph over it.
func RestEdges(frame []dynamo.Vec3) []dynamo.SpringEdge {
	n := len(frame)
	edges := make([]dynamo.SpringEdge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, dynamo.SpringEdge{A: i, B: j, RestLength: frame[j].Sub(frame[i]).Len()})
		}
	}
	return edges
}

type segment struct {
	x1, y1, x2, y2 int
	depth          float64
	stroke         string
}

// FrameToSVG draws one frame as a wireframe over a patch of the plane, as
// seen from cam. Only the edges picked by viz.ShortEdges are drawn.
func FrameToSVG(frame []dynamo.Vec3, edges []dynamo.SpringEdge, plane dynamo.Plane, cam *viz.Camera, width, height int) string {
	if len(frame) == 0 || cam == nil {
		return ""
	}

	ground := viz.NewWireframe()
	lo, hi := mesh.Bounds(frame)
	viz.PlaneWireframe(ground, plane, hi.Sub(lo).Len()+1, 8)

	var segs []segment
	add := func(a, b dynamo.Vec3, stroke string) {
		x1, y1, d1, _ := cam.Project(a, width, height)
		x2, y2, d2, _ := cam.Project(b, width, height)
		if d1 <= 0 || d2 <= 0 {
			return
		}
		segs = append(segs, segment{x1, y1, x2, y2, (d1 + d2) / 2, stroke})
	}
	for _, e := range ground.Edges {
		add(e.Start, e.End, planeStroke)
	}
	for _, i := range viz.ShortEdges(edges, len(frame)) {
		add(frame[edges[i].A], frame[edges[i].B], bodyStroke)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].depth > segs[j].depth })

	var sb strings.Builder
	header(&sb, width, height)
	for _, s := range segs {
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1.5"/>`+"\n",
			s.x1, s.y1, s.x2, s.y2, s.stroke)
	}
	sb.WriteString(`<g fill="` + bodyStroke + `">` + "\n")
	for _, p := range frame {
		x, y, d, _ := cam.Project(p, width, height)
		if d > 0 {
			fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="2.5"/>`+"\n", x, y)
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots ys against xs as a single polyline with ten percent
// padding on each axis.
func SeriesToSVG(xs, ys []float64, width, height int, stroke string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString(`"/>` + "\n</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
