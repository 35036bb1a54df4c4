package gui

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/regolith/internal/audio"
	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/control"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/physics"
	"github.com/san-kum/regolith/internal/scenario"
	"github.com/san-kum/regolith/internal/telemetry"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColGrid    = rl.NewColor(30, 30, 30, 255)    // Barely visible grid
	ColTool    = rl.NewColor(255, 170, 60, 255)
)

const (
	screenW, screenH = 1280, 720
	maxTelemetry     = 200
	fontPath         = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

type App struct {
	Cfg      *config.Config
	Preset   string
	Params   *dynamo.Params
	World    *dynamo.World
	Engine   *physics.Engine
	Ctrl     *control.ManualController
	Substeps int
	Last     telemetry.Sample
	Unstable bool

	Camera  rl.Camera3D
	Orbit   Orbit
	Running bool
	InMenu  bool

	Presets   []string
	Selected  int
	ParamKeys []string
	ParamSel  int
	Status    string

	Telemetry   []float64 // tool force history
	ShowVectors bool
	Audio       *audio.Processor
	Font        rl.Font
	logger      *slog.Logger
}

// initWindow opens a 1280x720 window at 60 FPS with the default exit key
// disabled.
func initWindow() {
	rl.InitWindow(screenW, screenH, "regolith")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont uses Liberation Mono when installed and the raylib font otherwise.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp creates the viewer. With a nil cfg it starts in the preset menu.
func NewApp(cfg *config.Config, preset string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Presets:     config.ListPresets(),
		Font:        loadFont(),
		InMenu:      cfg == nil,
		Telemetry:   make([]float64, 0, maxTelemetry),
		ShowVectors: true,
		Audio:       audio.NewProcessor(logger),
		logger:      logger,
	}
	if cfg != nil {
		if err := app.load(cfg, preset); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// RunInteractive opens the window on the preset menu and blocks until it is
// closed.
func RunInteractive(logger *slog.Logger) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(nil, "", logger)
	if err != nil {
		return err
	}
	defer app.Audio.Stop()
	app.RunLoop()
	return nil
}

// Run opens the window on one config and blocks until it is closed.
func Run(cfg *config.Config, preset string, logger *slog.Logger) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(cfg, preset, logger)
	if err != nil {
		return err
	}
	defer app.Audio.Stop()
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) load(cfg *config.Config, preset string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	params := cfg.Params()
	world, err := scenario.Build(params)
	if err != nil {
		return err
	}

	a.Cfg, a.Preset = cfg, preset
	a.Params = params
	a.World = world
	a.Engine = physics.NewEngine(params)
	a.Ctrl = control.NewManual()
	a.Substeps = SubstepsPerFrame(cfg.Dt, 60)
	a.Last = telemetry.Sample{}
	a.Unstable = false
	a.Running = true
	a.InMenu = false
	a.Status = ""
	a.Telemetry = a.Telemetry[:0]
	a.ParamKeys = SortedKeys(params.GetParams())
	a.ParamSel = 0

	lo, hi := scenario.Bounds(world)
	a.Orbit = NewOrbit(lo.Add(hi).Mul(0.5), hi.Sub(lo).Len())
	a.Camera = rl.NewCamera3D(a.Orbit.Eye(), a.Orbit.Center(), rl.NewVector3(0, 1, 0), 45.0, rl.CameraPerspective)
	a.logger.Info("bed loaded", "preset", preset, "particles", len(world.Particles), "substeps", a.Substeps)
	return nil
}

// Update handles one frame of input and physics. It returns false to quit.
func (a *App) Update() bool {
	if a.InMenu {
		return a.updateMenu()
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		return true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.load(a.Cfg, a.Preset); err != nil {
			a.Status = err.Error()
		}
	}
	if rl.IsKeyPressed(rl.KeyV) {
		a.ShowVectors = !a.ShowVectors
	}
	if rl.IsKeyPressed(rl.KeyM) {
		a.toggleSound()
	}
	a.updateParams()
	a.updateCamera()

	a.Ctrl.SetInput(ToolInput(keyState{
		w: rl.IsKeyDown(rl.KeyW), a: rl.IsKeyDown(rl.KeyA),
		s: rl.IsKeyDown(rl.KeyS), d: rl.IsKeyDown(rl.KeyD),
		q: rl.IsKeyDown(rl.KeyQ), e: rl.IsKeyDown(rl.KeyE),
	}, rl.IsMouseButtonDown(rl.MouseRightButton), rl.GetMouseDelta()))

	if a.Running && !a.Unstable {
		a.step()
	}
	return true
}

func (a *App) step() {
	var stats dynamo.StepStats
	in := a.Ctrl.Compute(a.World, a.World.Time)
	for i := 0; i < a.Substeps; i++ {
		stats = a.Engine.StepWorld(a.World, a.Cfg.Dt, in)
		in = dynamo.ToolInput{}
	}
	if !a.World.IsValid() {
		a.Unstable = true
		a.Status = fmt.Sprintf("unstable at step %d", a.World.Steps)
		a.logger.Warn("simulation unstable", "step", a.World.Steps, "time", a.World.Time)
		return
	}
	a.Last = telemetry.NewSample(a.World, stats)
	a.Audio.SetLoad(a.Last.Force, a.Last.ToolContacts)
	a.Telemetry = append(a.Telemetry, a.Last.Force)
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) toggleSound() {
	if a.Audio.Active {
		a.Audio.Stop()
		return
	}
	if err := a.Audio.Start(); err != nil {
		a.Status = "audio: " + err.Error()
		a.logger.Warn("audio unavailable", "err", err)
	}
}

func (a *App) updateMenu() bool {
	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return false
	case rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ):
		a.Selected = (a.Selected + 1) % len(a.Presets)
	case rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK):
		a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
	case rl.IsKeyPressed(rl.KeyEnter):
		name := a.Presets[a.Selected]
		if err := a.load(config.GetPreset(name), name); err != nil {
			a.Status = err.Error()
		}
	}
	return true
}

func (a *App) updateParams() {
	if len(a.ParamKeys) == 0 {
		return
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ParamSel = (a.ParamSel + 1) % len(a.ParamKeys)
	}
	factor := 0.0
	if rl.IsKeyPressed(rl.KeyEqual) {
		factor = 1.05
	}
	if rl.IsKeyPressed(rl.KeyMinus) {
		factor = 0.95
	}
	if factor == 0 {
		return
	}
	key := a.ParamKeys[a.ParamSel]
	if err := a.Params.SetParam(key, a.Params.GetParams()[key]*factor); err != nil {
		a.Status = err.Error()
		return
	}
	a.Status = ""
}

// updateCamera orbits with the arrow keys and zooms with the wheel.
func (a *App) updateCamera() {
	if rl.IsKeyDown(rl.KeyLeft) {
		a.Orbit.Yaw -= 0.02
	}
	if rl.IsKeyDown(rl.KeyRight) {
		a.Orbit.Yaw += 0.02
	}
	if rl.IsKeyDown(rl.KeyUp) {
		a.Orbit.Pitch = math.Min(a.Orbit.Pitch+0.02, 1.5)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.Orbit.Pitch = math.Max(a.Orbit.Pitch-0.02, 0.05)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Orbit.Zoom(float64(wheel))
	}

	lerp := float32(0.2)
	a.Camera.Position = rl.Vector3Lerp(a.Camera.Position, a.Orbit.Eye(), lerp)
	a.Camera.Target = rl.Vector3Lerp(a.Camera.Target, a.Orbit.Center(), lerp)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawSim()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("regolith", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Preset), 160, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	switch {
	case a.Unstable:
		status, col = "UNSTABLE", rl.Red
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	y := 80
	line := func(format string, args ...any) {
		a.drawText(fmt.Sprintf(format, args...), 30, y, 14, ColText)
		y += 20
	}
	line("t %.3f s  step %d", a.World.Time, a.World.Steps)
	line("grains %d  pairs %d", len(a.World.Particles), a.Last.Pairs)
	if t := a.World.Tool; t != nil {
		line("tool %.3f %.3f %.3f", t.Position[0], t.Position[1], t.Position[2])
		line("force %.4f N  torque %.2e", t.Forces.Len(), t.Torque.Len())
	}
	line("contacts %d  cohesive %d", a.Last.ToolContacts, a.Last.CohesionContacts)
	line("kinetic %.3e J  pile %.4f m", a.Last.KineticEnergy, a.Last.PileHeight)

	y += 10
	values := a.Params.GetParams()
	for i, key := range a.ParamKeys {
		c, prefix := ColTextDim, "  "
		if i == a.ParamSel {
			c, prefix = ColSelect, "> "
		}
		a.drawText(fmt.Sprintf("%s%-10s %.4g", prefix, key, values[key]), 30, y, 14, c)
		y += 18
	}
	if a.Status != "" {
		a.drawText(a.Status, 30, y+10, 14, rl.Red)
	}

	a.DrawTelemetry()
	a.drawText("[WASD/QE] TOOL  [RMB] TILT  [ARROWS] ORBIT  [TAB/+/-] TUNE  [M] SOUND  [SPACE] PAUSE  [R] RESET  [ESC] MENU", 290, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}
	rectX, rectY := 30, 600
	width, height := 400, 60

	points := Polyline(a.Telemetry, float32(rectX), float32(rectY), float32(width), float32(height))
	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("F: %.2e N", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("regolith", 50, 50, 40, ColSelect)
	a.drawText("Select a bed", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		grains := 0
		if cfg := config.GetPreset(name); cfg != nil {
			grains = scenario.Count(cfg.Params())
		}
		text, col := fmt.Sprintf("  %-10s %4d grains", name, grains), ColText
		if i == a.Selected {
			text, col = fmt.Sprintf("> %-10s %4d grains", name, grains), ColSelect
		}
		a.drawText(text, 50, y, 20, col)
		y += 28
	}
	if a.Status != "" {
		a.drawText(a.Status, 50, y+20, 16, rl.Red)
	}
	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}
