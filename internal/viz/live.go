package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/experiment"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/softbody"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 60
	planeDivisions  = 6
	forceLength     = 0.25
)

// Frame stores one rendered tick for replay.
type Frame struct {
	Positions []dynamo.Vec3
	Forces    []dynamo.Vec3
	Time      float64
	Energy    float64
	Contacts  int
}

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model runs a soft body in real time and draws it in the terminal.
type Model struct {
	cfg           *config.Config
	name          string
	body          *softbody.Body
	gravity       dynamo.Vec3
	edges         [][2]int
	shortEdges    []int
	edgeMode      EdgeMode
	showPlane     bool
	showForces    bool
	stepsPerFrame int
	width, height int
	canvas        *Canvas
	wire          *Wireframe
	camera        *Camera
	running       bool
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	energyHistory []float64
	contacts      []float64
	penetration   *metrics.MaxPenetration
	history       []Frame
	playHead      int
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	showHelp      bool
	status        string
	err           error
}

// NewModel builds a body from cfg. The body is rebuilt from cfg on reset.
func NewModel(cfg *config.Config) (Model, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		cfg:           cfg,
		name:          cfg.Name(),
		edgeMode:      EdgesShort,
		showPlane:     true,
		stepsPerFrame: realTimeSteps(cfg.Dt),
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		wire:          NewWireframe(),
		camera:        NewCamera(),
		running:       true,
		penetration:   metrics.NewMaxPenetration(),
		gifPath:       "softsim.gif",
	}
	m.attach(exp.Body())

	params := m.body.GetParams()
	m.params = params
	m.initialParams = make(map[string]float64, len(params))
	m.paramKeys = make([]string, 0, len(params))
	for k, v := range params {
		m.paramKeys = append(m.paramKeys, k)
		if v == 0 {
			v = 1e-6
		}
		m.initialParams[k] = v
	}
	sort.Strings(m.paramKeys)

	m.frameCamera()
	return m, nil
}

// realTimeSteps is the number of ticks that cover one display frame.
func realTimeSteps(dt float64) int {
	return max(1, int(math.Round(1.0/frameRate/dt)))
}

func (m *Model) attach(body *softbody.Body) {
	m.body = body
	m.gravity = body.Params().Gravity
	snap := body.Snapshot()
	m.edges = make([][2]int, len(snap.Springs))
	for i, s := range snap.Springs {
		m.edges[i] = [2]int{s.A, s.B}
	}
	m.shortEdges = ShortEdges(snap.Springs, body.Len())
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.contacts = make([]float64, 0, historyCapacity)
	m.history = make([]Frame, 0, historyCapacity)
	m.playHead = -1
	m.penetration.Reset()
	m.err = nil
}

func (m *Model) frameCamera() {
	points := m.body.Positions()
	if m.showPlane {
		points = append(points, m.body.Plane().Position)
	}
	lo, hi := mesh.Bounds(points)
	m.camera.Frame(lo, hi)
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "a", "left":
			m.camera.RotateYaw(-0.15)
		case "d", "right":
			m.camera.RotateYaw(0.15)
		case "w":
			m.camera.RotatePitch(0.1)
		case "s":
			m.camera.RotatePitch(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "c":
			m.frameCamera()
		case "e":
			m.edgeMode = (m.edgeMode + 1) % 3
		case "p":
			m.showPlane = !m.showPlane
		case "f":
			m.showForces = !m.showForces
		case ".", ">":
			m.stepsPerFrame = min(m.stepsPerFrame*2, 256)
		case ",", "<":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.camera.Update()
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// resize keeps the canvas to the left of the stats panel.
func (m *Model) resize(w, h int) {
	cw := max(20, w-52)
	ch := max(8, h-4)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	newVal := m.params[key] * factor
	if err := m.body.SetParam(key, newVal); err != nil {
		m.status = err.Error()
		return
	}
	m.params[key] = newVal
}

// step advances the body by one display frame worth of ticks.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.body.Step(m.cfg.Dt); err != nil {
			m.err = err
			m.running = false
			break
		}
	}

	snap := m.body.Snapshot()
	m.penetration.Observe(snap, m.body.Time())
	energy := metrics.Total(snap, m.gravity)
	contacts := 0
	for _, in := range snap.InContact {
		if in {
			contacts++
		}
	}

	m.energyHistory = pushBounded(m.energyHistory, energy)
	m.contacts = pushBounded(m.contacts, float64(contacts))

	m.history = append(m.history, Frame{Positions: snap.Positions, Forces: snap.Forces, Time: m.body.Time(), Energy: energy, Contacts: contacts})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func pushBounded(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the body from its configuration and replays the tuned
// parameters' initial values.
func (m *Model) reset() {
	exp, err := experiment.New(m.cfg)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.attach(exp.Body())
	fresh := m.body.GetParams()
	for k := range m.params {
		m.params[k] = fresh[k]
	}
	m.status = "reset"
}

func (m *Model) current() ([]dynamo.Vec3, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		f := m.history[m.playHead]
		return f.Positions, f.Time
	}
	return m.body.Positions(), m.body.Time()
}

// currentForces returns the per-particle forces of the frame being shown.
func (m *Model) currentForces() []dynamo.Vec3 {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead].Forces
	}
	return m.body.Snapshot().Forces
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.wire.Clear()

	positions, _ := m.current()
	lo, hi := mesh.Bounds(positions)
	extent := math.Max(1, hi.Sub(lo).Len())
	if m.showPlane && m.body.Params().HandlePlaneCollisions {
		PlaneWireframe(m.wire, m.body.Plane(), extent, planeDivisions)
	}

	switch m.edgeMode {
	case EdgesShort:
		for _, i := range m.shortEdges {
			e := m.edges[i]
			m.wire.AddEdge(positions[e[0]], positions[e[1]])
		}
	case EdgesAll:
		for _, e := range m.edges {
			m.wire.AddEdge(positions[e[0]], positions[e[1]])
		}
	}
	for _, p := range positions {
		m.wire.AddPoint(p)
	}
	if m.showForces {
		ForceWireframe(m.wire, positions, m.currentForces(), forceLength*extent)
	}

	Render3D(m.canvas, m.wire, m.camera)
}

func (m *Model) statusLine() string {
	switch {
	case m.err != nil:
		return StatusRecording.Render("DIVERGED")
	case m.playHead != -1 && len(m.history) > 0:
		offset := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.2fs)", offset))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.2fs)", offset))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	case m.recording:
		return StatusRecording.Render("● REC")
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(m.canvas.String()))

	_, t := m.current()
	energy, contacts := 0.0, 0
	if m.playHead >= 0 && m.playHead < len(m.history) {
		energy, contacts = m.history[m.playHead].Energy, m.history[m.playHead].Contacts
	} else if n := len(m.history); n > 0 {
		energy, contacts = m.history[n-1].Energy, m.history[n-1].Contacts
	}

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.name), CurrentTheme.Primary, CurrentTheme.Secondary) + "\n\n")
	s.WriteString(m.statusLine() + "\n\n")
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Contacts") + SparklineChart(m.contacts, 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3fs", t))
	row("Energy", fmt.Sprintf("%.3f", energy))
	row("Contacts", fmt.Sprintf("%d / %d", contacts, m.body.Len()))
	row("Sink", fmt.Sprintf("%.4f", m.penetration.Value()))
	row("Springs", fmt.Sprintf("%d (%s)", m.body.SpringCount(), m.edgeMode))
	row("Backend", m.body.Backend().Name())
	row("Speed", fmt.Sprintf("%d ticks/frame", m.stepsPerFrame))
	if m.err != nil {
		var simErr *dynamo.SimError
		if errors.As(m.err, &simErr) {
			row("Error", fmt.Sprintf("step %d", simErr.Step))
		}
	} else if m.status != "" {
		row("Note", m.status)
	}

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		val, initial := m.params[k], m.initialParams[k]
		bar := ProgressBar(val/(2.0*initial), 10)
		line := fmt.Sprintf("%-10s %s %.3g", k, bar, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString(helpStyle.Foreground(CurrentTheme.Muted).Render("\n" + Separator(30) + "\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel ↑↓:Tune"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Rebuild the body         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  A/D W/S  - Orbit camera             ║
║  +/-      - Zoom                     ║
║  C        - Reframe camera           ║
║  E        - Cycle spring display     ║
║  P        - Toggle plane             ║
║  F        - Toggle force vectors     ║
║  , .      - Slower / faster          ║
║  [ ]      - Rewind / forward         ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.status = err.Error()
	} else if len(m.frames) > 0 {
		m.status = "saved " + m.gifPath
	}
	m.frames = nil
}

// captureFrame rasterizes the braille canvas, one 4x4 block per dot.
func (m *Model) captureFrame() {
	const dot = 4
	imgW, imgH := m.canvas.SubWidth()*dot, m.canvas.SubHeight()*dot
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	for y := 0; y < m.canvas.SubHeight(); y++ {
		for x := 0; x < m.canvas.SubWidth(); x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run opens the live view for cfg.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
