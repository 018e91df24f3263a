package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

type cell struct{ x, y int }

// LiveRenderer prints a side view of the body to a terminal while a run is
// in progress. It implements dynamo.Observer and drops ticks that arrive
// faster than the frame rate.
type LiveRenderer struct {
	name      string
	frameRate int
	out       io.Writer
	lastFrame time.Time
	canvas    [][]rune
	trail     []cell

	// world window, fixed on the first frame
	scale      float64
	originX    float64
	floorY     float64
	calibrated bool
}

func NewLiveRenderer(name string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		name:      name,
		frameRate: frameRate,
		out:       os.Stdout,
		canvas:    canvas,
		trail:     make([]cell, 0, 50),
	}
}

func (r *LiveRenderer) OnStep(s *dynamo.Snapshot, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.Draw(s)
	r.render(s, t)
}

// Draw rasterises s into the canvas without printing it.
func (r *LiveRenderer) Draw(s *dynamo.Snapshot) {
	if !r.calibrated {
		r.calibrate(s)
	}
	r.clear()

	floor := r.toCell(dynamo.Vec3{0, s.Plane.Position[1], 0})
	for x := 0; x < width; x++ {
		r.set(x, floor.y, '=')
	}

	for _, e := range s.Springs {
		a, b := r.toCell(s.Positions[e.A]), r.toCell(s.Positions[e.B])
		r.line(a.x, a.y, b.x, b.y, '.')
	}

	c := r.toCell(mesh.Centroid(s.Positions))
	r.trail = append(r.trail, c)
	if len(r.trail) > 40 {
		r.trail = r.trail[1:]
	}
	for _, pt := range r.trail {
		r.set(pt.x, pt.y, '+')
	}

	for i, p := range s.Positions {
		ch := 'o'
		if s.InContact[i] {
			ch = '#'
		}
		pc := r.toCell(p)
		r.set(pc.x, pc.y, ch)
	}
}

// calibrate fits the first frame and its drop height into the canvas.
// Columns are twice as dense as rows to keep the aspect ratio.
func (r *LiveRenderer) calibrate(s *dynamo.Snapshot) {
	lo, hi := mesh.Bounds(s.Positions)
	r.floorY = math.Min(s.Plane.Position[1], lo[1])
	r.originX = (lo[0] + hi[0]) / 2

	span := math.Max(hi[1]-r.floorY, (hi[0]-lo[0])/2)
	if span <= 0 {
		span = 1
	}
	r.scale = float64(height-3) / (span * 1.2)
	r.calibrated = true
}

func (r *LiveRenderer) toCell(p dynamo.Vec3) cell {
	x := width/2 + int(math.Round((p[0]-r.originX)*r.scale*2))
	y := height - 2 - int(math.Round((p[1]-r.floorY)*r.scale))
	return cell{x, y}
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// String returns the canvas rows joined by newlines.
func (r *LiveRenderer) String() string {
	var b strings.Builder
	for _, row := range r.canvas {
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *LiveRenderer) render(s *dynamo.Snapshot, t float64) {
	contacts := 0
	for _, c := range s.InContact {
		if c {
			contacts++
		}
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.name, t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  particles=%d contacts=%d height=%.3f\n",
		len(s.Positions), contacts, mesh.Centroid(s.Positions)[1]))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
