package viz

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/control"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/physics"
	"github.com/san-kum/regolith/internal/scenario"
	"github.com/san-kum/regolith/internal/telemetry"
)

const (
	width           = 80
	height          = 24
	frameRate       = 60
	historyCapacity = 600
	// ticks a key stays held after its last repeat
	holdTicks    = 12
	pointerStep  = 10.0
	frameMargin  = 0.02
	recordingGIF = "regolith.gif"
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives the engine from keyboard intent and draws the bed.
type Model struct {
	name     string
	params   *dynamo.Params
	initial  *dynamo.World
	world    *dynamo.World
	engine   *physics.Engine
	ctrl     *control.ManualController
	dt       float64
	substeps int
	held     int

	last      telemetry.Sample
	forces    []float64
	contacts  []float64
	history   []dynamo.Snapshot
	playHead  int
	running   bool
	unstable  bool
	status    string
	recording bool
	frames    []*image.Paletted
	showHelp  bool
	quitOnEsc bool

	canvas *Canvas
	frame  Frame
	camera *Camera
	view   View

	paramKeys     []string
	initialParams map[string]float64
	selected      int
}

// NewModel builds the bed described by cfg. name labels the header.
func NewModel(cfg *config.Config, name string) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, fmt.Errorf("invalid config: %w", err)
	}
	params := cfg.Params()
	world, err := scenario.Build(params)
	if err != nil {
		return Model{}, err
	}

	initialParams := params.GetParams()
	keys := make([]string, 0, len(initialParams))
	for k := range initialParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	engine := physics.NewEngine(params)

	frame := FrameFor(world.Snapshot(), frameMargin)
	m := Model{
		name:          name,
		params:        params,
		initial:       world.Clone(),
		world:         world,
		engine:        engine,
		ctrl:          control.NewManual(),
		dt:            cfg.Dt,
		substeps:      max(1, int(math.Round(1/(frameRate*cfg.Dt)))),
		forces:        make([]float64, 0, historyCapacity),
		contacts:      make([]float64, 0, historyCapacity),
		history:       make([]dynamo.Snapshot, 0, historyCapacity),
		playHead:      -1,
		running:       true,
		quitOnEsc:     true,
		canvas:        NewCanvas(width, height),
		frame:         frame,
		camera:        NewCamera(frame.Center(), frame.Span()),
		paramKeys:     keys,
		initialParams: initialParams,
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// World exposes the live bed.
func (m Model) World() *dynamo.World { return m.world }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.quitOnEsc {
			return m, tea.Quit
		}
	case "w", "a", "s", "d", "q", "e", "W", "A", "S", "D", "Q", "E":
		if m.ctrl.Press([]rune(strings.ToLower(key))[0]) {
			m.held = holdTicks
		}
	case "left":
		m.ctrl.AddPointer(-pointerStep, 0)
	case "right":
		m.ctrl.AddPointer(pointerStep, 0)
	case "up":
		m.ctrl.AddPointer(0, -pointerStep)
	case "down":
		m.ctrl.AddPointer(0, pointerStep)
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
	case "+", "=":
		m.adjustParam(1.05)
	case "-", "_":
		m.adjustParam(0.95)
	case "v":
		m.view = m.view.Next()
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case ">", ".":
		m.camera.ZoomIn()
	case "<", ",":
		m.camera.ZoomOut()
	case "g":
		m.toggleRecording()
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// advance runs one frame: releases stale keys, steps physics and records.
func (m *Model) advance() {
	if m.held > 0 {
		m.held--
		if m.held == 0 {
			m.ctrl.Release()
		}
	}
	if m.running && !m.unstable {
		if m.playHead == -1 {
			m.step()
		} else {
			m.playHead++
			if m.playHead >= len(m.history) {
				m.playHead = -1
			}
		}
	}
	m.draw()
	if m.recording {
		m.frames = append(m.frames, captureFrame(m.canvas))
	}
}

// step advances physics by one frame worth of ticks. Tool intent is applied
// once per frame.
func (m *Model) step() {
	var stats dynamo.StepStats
	in := m.ctrl.Compute(m.world, m.world.Time)
	for i := 0; i < m.substeps; i++ {
		stats = m.engine.StepWorld(m.world, m.dt, in)
		in = dynamo.ToolInput{}
	}
	if !m.world.IsValid() {
		m.unstable = true
		m.status = fmt.Sprintf("unstable at step %d", m.world.Steps)
		return
	}

	m.last = telemetry.NewSample(m.world, stats)
	m.forces = pushBounded(m.forces, m.last.Force)
	m.contacts = pushBounded(m.contacts, float64(m.last.ToolContacts))
	m.history = append(m.history, m.world.Snapshot())
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

// reset restores the initial bed and parameters.
func (m *Model) reset() {
	m.world = m.initial.Clone()
	m.ctrl.Release()
	m.held = 0
	m.forces = m.forces[:0]
	m.contacts = m.contacts[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.last = telemetry.Sample{}
	m.unstable = false
	m.status = ""
	for k, v := range m.initialParams {
		if err := m.params.SetParam(k, v); err != nil {
			m.status = err.Error()
		}
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected parameter. Rejected values leave the
// parameter unchanged and are reported in the status line.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params.GetParams()[key]
	if err := m.params.SetParam(key, val*factor); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		m.status = "recording"
		return
	}
	m.recording = false
	if len(m.frames) > 0 {
		if err := SaveGIF(recordingGIF, m.frames); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), recordingGIF)
		}
	}
	m.frames = nil
}

// snapshot returns the state being shown, which is a history entry while
// replaying.
func (m *Model) snapshot() dynamo.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.world.Snapshot()
}

func (m *Model) draw() {
	DrawScene(m.canvas, m.snapshot(), m.params.ToolHalfExtents, m.frame, m.view, m.camera)
}

func (m Model) statusLine() string {
	switch {
	case m.unstable:
		return statusStyle(CurrentTheme.Error).Render("UNSTABLE")
	case m.playHead != -1:
		back := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		return statusStyle(CurrentTheme.Warning).Render(fmt.Sprintf("REPLAY (%.2fs)", back))
	case !m.running:
		return statusStyle(CurrentTheme.Warning).Render("PAUSED")
	case m.recording:
		return statusStyle(CurrentTheme.Error).Render("● REC")
	}
	return statusStyle(CurrentTheme.Success).Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.statusLine() + "  " + valueStyle.Render(m.view.String()) + "\n")
	if m.status != "" {
		s.WriteString(KeyHint.Render(m.status) + "\n")
	}
	s.WriteString("\n")

	if len(m.forces) > 1 {
		chart := asciigraph.Plot(m.forces, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("tool force [N]"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Secondary).Render(chart) + "\n")
	}

	snap := m.snapshot()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3fs", snap.Time))
	row("Grains", fmt.Sprintf("%d", len(snap.Positions)))
	if snap.HasTool {
		p := snap.ToolPosition
		row("Tool", fmt.Sprintf("%.3f %.3f %.3f", p[0], p[1], p[2]))
		row("Force", fmt.Sprintf("%.4f N", snap.ToolForces.Len()))
		row("Tilt", fmt.Sprintf("%.1f°", mgl64.RadToDeg(tilt(snap.ToolRotation))))
	}
	row("Contacts", fmt.Sprintf("%d tool, %d cohesive", m.last.ToolContacts, m.last.CohesionContacts))
	row("Pairs", fmt.Sprintf("%d", m.last.Pairs))
	row("Kinetic", fmt.Sprintf("%.3g J", m.last.KineticEnergy))
	row("Pile", fmt.Sprintf("%.4f m", m.last.PileHeight))
	s.WriteString(labelStyle.Render("Load") + SparklineChart(m.contacts, 24) + "\n")

	s.WriteString("\nPARAMETERS\n")
	values := m.params.GetParams()
	for i, k := range m.paramKeys {
		val, initial := values[k], m.initialParams[k]
		ratio := 0.0
		if initial != 0 {
			ratio = val / (2 * initial)
		}
		line := fmt.Sprintf("%-10s %s %.4g", k, ProgressBar(ratio, 10), val)
		if i == m.selected {
			s.WriteString(activeStyle().Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString(helpStyle.Render("WASD/QE:Tool ←↑↓→:Tilt SP:Pause R:Reset\nV:View Tab/+/-:Tune [ ]:Replay ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

// tilt is the angle between the tool's local up axis and world up.
func tilt(q mgl64.Quat) float64 {
	up := q.Rotate(mgl64.Vec3{0, 1, 0})
	return math.Acos(mgl64.Clamp(up[1], -1, 1))
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  W/S      - Tool forward/back        ║
║  A/D      - Tool left/right          ║
║  E/Q      - Tool up/down             ║
║  Arrows   - Tilt the tool            ║
║  Space    - Pause/Resume             ║
║  R        - Reset the bed            ║
║  V        - Side, top or 3D view     ║
║  X/Y      - Orbit the 3D camera      ║
║  < >      - Zoom the 3D camera       ║
║  Tab      - Cycle parameters         ║
║  + / -    - Scale parameter by 5%    ║
║  [ ]      - Replay history           ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Esc      - Quit                     ║
╚══════════════════════════════════════╝`
