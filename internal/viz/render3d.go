package viz

import (
	"math"
	"sort"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

const (
	cameraFPS       = 60
	cameraFrequency = 6.0
	cameraDamping   = 1.0
	minZoom         = 0.2
	maxZoom         = 8.0
)

// eased is one camera parameter that follows its goal through a
// critically damped spring.
type eased struct {
	value, velocity, goal float64
}

func (e *eased) update(s harmonica.Spring) {
	e.value, e.velocity = s.Update(e.value, e.velocity, e.goal)
}

func (e *eased) snap() {
	e.value, e.velocity = e.goal, 0
}

// Camera orbits a target point. Rotation and zoom requests move goals;
// Update eases the visible values toward them once per frame.
type Camera struct {
	Target   dynamo.Vec3
	Distance float64
	FOV      float64
	Near     float64
	Far      float64

	yaw, pitch, zoom eased
	spring           harmonica.Spring
}

func NewCamera() *Camera {
	c := &Camera{
		Distance: 6,
		FOV:      math.Pi / 4,
		Near:     0.1,
		Far:      1000,
		spring:   harmonica.NewSpring(harmonica.FPS(cameraFPS), cameraFrequency, cameraDamping),
	}
	c.yaw.goal = math.Pi / 6
	c.pitch.goal = 0.35
	c.zoom.goal = 1
	c.Settle()
	return c
}

func (c *Camera) RotateYaw(a float64) { c.yaw.goal += a }

// RotatePitch tilts the camera, stopping short of the poles.
func (c *Camera) RotatePitch(a float64) {
	c.pitch.goal = mgl64.Clamp(c.pitch.goal+a, -1.5, 1.5)
}

func (c *Camera) ZoomIn()  { c.zoom.goal = math.Min(maxZoom, c.zoom.goal*1.2) }
func (c *Camera) ZoomOut() { c.zoom.goal = math.Max(minZoom, c.zoom.goal/1.2) }

// Update advances the easing by one frame.
func (c *Camera) Update() {
	c.yaw.update(c.spring)
	c.pitch.update(c.spring)
	c.zoom.update(c.spring)
}

// Settle jumps straight to the goals.
func (c *Camera) Settle() {
	c.yaw.snap()
	c.pitch.snap()
	c.zoom.snap()
}

func (c *Camera) Yaw() float64   { return c.yaw.value }
func (c *Camera) Pitch() float64 { return c.pitch.value }
func (c *Camera) Zoom() float64  { return c.zoom.value }

// Eye is the camera position in world space.
func (c *Camera) Eye() dynamo.Vec3 {
	zoom := math.Max(c.zoom.value, minZoom)
	d := c.Distance / zoom
	cp := math.Cos(c.pitch.value)
	offset := dynamo.Vec3{
		d * cp * math.Sin(c.yaw.value),
		d * math.Sin(c.pitch.value),
		d * cp * math.Cos(c.yaw.value),
	}
	return c.Target.Add(offset)
}

// Frame points the camera at the middle of the given points and pulls back
// far enough to keep them in view.
func (c *Camera) Frame(lo, hi dynamo.Vec3) {
	c.Target = lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	c.Distance = math.Max(2, 2.5*radius/math.Tan(c.FOV/2))
}

func (c *Camera) viewProjection(sw, sh int) mgl64.Mat4 {
	aspect := 1.0
	if sh > 0 {
		aspect = float64(sw) / float64(sh)
	}
	view := mgl64.LookAtV(c.Eye(), c.Target, dynamo.Up)
	proj := mgl64.Perspective(c.FOV, aspect, c.Near, c.Far)
	return proj.Mul4(view)
}

// Project converts world coordinates to sub-pixel screen coordinates.
// It returns x, y, the view depth and whether the point lies on screen.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, float64, bool) {
	return project(c.viewProjection(sw, sh), p, sw, sh)
}

func project(vp mgl64.Mat4, p dynamo.Vec3, sw, sh int) (int, int, float64, bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	sx := int(math.Round((ndc[0] + 1) / 2 * float64(sw-1)))
	sy := int(math.Round((1 - ndc[1]) / 2 * float64(sh-1)))
	return sx, sy, w, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End dynamo.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e dynamo.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p dynamo.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                   { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe far to near. Edges with one endpoint behind
// the camera are dropped.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.SubWidth(), c.SubHeight()
	vp := cam.viewProjection(sw, sh)
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := project(vp, e.Start, sw, sh)
		x2, y2, d2, v2 := project(vp, e.End, sw, sh)
		if d1 <= 0 || d2 <= 0 || !(v1 || v2) {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.DrawPoint(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// PlaneWireframe outlines a square patch of the plane centred on its
// reference point, with divisions grid lines per side.
func PlaneWireframe(w *Wireframe, pl dynamo.Plane, half float64, divisions int) {
	u, v := planeBasis(pl.Normal)
	origin := pl.Position
	if divisions < 1 {
		divisions = 1
	}
	step := 2 * half / float64(divisions)
	for i := 0; i <= divisions; i++ {
		off := -half + float64(i)*step
		w.AddEdge(origin.Add(u.Mul(off)).Sub(v.Mul(half)), origin.Add(u.Mul(off)).Add(v.Mul(half)))
		w.AddEdge(origin.Add(v.Mul(off)).Sub(u.Mul(half)), origin.Add(v.Mul(off)).Add(u.Mul(half)))
	}
}

// ForceWireframe adds an edge from each position along its force. Forces are
// scaled so the largest one spans length.
func ForceWireframe(w *Wireframe, positions, forces []dynamo.Vec3, length float64) {
	peak := 0.0
	for _, f := range forces {
		peak = math.Max(peak, f.Len())
	}
	if peak == 0 {
		return
	}
	scale := length / peak
	for i, f := range forces[:min(len(forces), len(positions))] {
		if f.Len() == 0 {
			continue
		}
		w.AddEdge(positions[i], positions[i].Add(f.Mul(scale)))
	}
}

// planeBasis returns two unit vectors spanning the plane with normal n.
func planeBasis(n dynamo.Vec3) (dynamo.Vec3, dynamo.Vec3) {
	ref := dynamo.Vec3{1, 0, 0}
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = dynamo.Vec3{0, 0, 1}
	}
	u := n.Cross(ref).Normalize()
	v := n.Cross(u).Normalize()
	return u, v
}

// EdgeMode selects which springs are drawn.
type EdgeMode int

const (
	EdgesShort EdgeMode = iota
	EdgesAll
	EdgesNone
)

func (m EdgeMode) String() string {
	switch m {
	case EdgesShort:
		return "nearest"
	case EdgesAll:
		return "all"
	default:
		return "none"
	}
}

// ShortEdges picks the springs whose rest length is the shortest at either
// endpoint. On meshes built from regular shapes these are the visible
// mesh edges.
func ShortEdges(springs []dynamo.SpringEdge, n int) []int {
	shortest := make([]float64, n)
	for i := range shortest {
		shortest[i] = math.Inf(1)
	}
	for _, s := range springs {
		shortest[s.A] = math.Min(shortest[s.A], s.RestLength)
		shortest[s.B] = math.Min(shortest[s.B], s.RestLength)
	}
	out := make([]int, 0)
	for i, s := range springs {
		limit := math.Max(shortest[s.A], shortest[s.B]) * 1.001
		if s.RestLength <= limit {
			out = append(out, i)
		}
	}
	return out
}
