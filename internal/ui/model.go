package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/softrig/internal/control"
	"github.com/olivier-w/softrig/internal/drive"
	"github.com/olivier-w/softrig/internal/geometry"
	"github.com/olivier-w/softrig/internal/scene"
	"github.com/olivier-w/softrig/internal/sim"
	"github.com/olivier-w/softrig/internal/util"
	"github.com/olivier-w/softrig/internal/visualizer"
)

const (
	// canvasLeft and canvasTop locate the canvas inside the view, in cells.
	canvasLeft = 2
	canvasTop  = 3
	// hudRows is the number of lines the view spends outside the canvas.
	hudRows        = 10
	historySize    = 256
	statusLifetime = 5 * time.Second
)

// Options configures a Model.
type Options struct {
	SceneName string
	FPS       int
	Controls  control.State
	Envelope  *drive.Envelope // drives the nudge from audio instead of the mouse
	Player    *drive.Player   // plays the driving track, may be nil
	Track     string
	SaveDir   string
	Logger    *zap.Logger
	Autostart bool
}

// Model is the Bubbletea model for the softrig TUI.
type Model struct {
	ctl      *sim.Controller
	geometry *geometry.Geometry
	rest     *geometry.Geometry // authored pose
	controls control.State
	selected int

	sceneName string
	fps       int
	frames    uint64
	seek      seekSpring
	lastSeek  control.Seek
	reach     float64

	envelope *drive.Envelope
	player   *drive.Player
	track    string

	rig     *visualizer.Rig
	history *visualizer.History
	speeds  sim.Speeds
	bySpeed bool
	meter   progress.Model
	help    help.Model
	keys    keyMap

	width, height int
	saveDir       string
	status        string
	statusErr     bool
	statusTime    time.Time
	autostart     bool
	quitting      bool
	log           *zap.Logger
}

// New creates a Model simulating g. The geometry is written in place while
// the simulation runs.
func New(g *geometry.Geometry, opts Options) Model {
	if opts.FPS < 1 {
		opts.FPS = 60
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SaveDir == "" {
		opts.SaveDir = "."
	}
	controls := opts.Controls.Clone()

	reach := 10.0
	if lo, hi, ok := g.Bounds(); ok {
		span := r2.Sub(hi, lo)
		reach = math.Max(math.Max(span.X, span.Y)/2, reach)
	}

	m := Model{
		ctl:       sim.NewController(g, controls, sim.WithLogger(opts.Logger)),
		geometry:  g,
		rest:      g.Clone(),
		controls:  controls,
		sceneName: opts.SceneName,
		fps:       opts.FPS,
		seek:      newSeekSpring(opts.FPS),
		reach:     reach,
		envelope:  opts.Envelope,
		player:    opts.Player,
		track:     opts.Track,
		rig:       visualizer.NewRig(60, 16),
		history:   visualizer.NewHistory(historySize),
		meter:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:      help.New(),
		keys:      defaultKeys(),
		width:     64,
		height:    16 + hudRows,
		saveDir:   opts.SaveDir,
		autostart: opts.Autostart,
		log:       opts.Logger,
	}
	m.meter.Width = 20
	m.rig.Fit(m.rest, 60, 16)
	return m
}

// Controller returns the simulation controller.
func (m Model) Controller() *sim.Controller { return m.ctl }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.fps), tea.SetWindowTitle(windowTitle(m.sceneName, sim.Idle))}
	if m.autostart {
		cmds = append(cmds, func() tea.Msg { return autostartMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion || msg.Action == tea.MouseActionPress {
			m.seek.setTarget(m.cellToWorld(msg.X, msg.Y))
		}
		return m, nil

	case autostartMsg:
		if m.ctl.State() != sim.Idle {
			return m, nil
		}
		return m.toggle()

	case frameMsg:
		m = m.frame()
		return m, tickCmd(m.fps)

	case sceneSavedMsg:
		if msg.err != nil {
			m = m.setStatus(fmt.Sprintf("save failed: %v", msg.err), true)
			m.log.Warn("saving pose failed", zap.Error(msg.err))
		} else {
			m = m.setStatus("saved "+msg.path, false)
			m.log.Info("pose saved", zap.String("path", msg.path))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.canvasSize()
		m.rig.Fit(m.rest, cols, rows)
		m.help.Width = msg.Width - 4
		m.meter.Width = max(10, min(30, msg.Width/4))
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.ctl.Deactivate()
		if m.player != nil {
			m.player.Close()
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m.toggle()

	case key.Matches(msg, m.keys.Pause):
		m.ctl.TogglePause()
		m.syncPlayer()
		return m, tea.SetWindowTitle(windowTitle(m.sceneName, m.ctl.State()))

	case key.Matches(msg, m.keys.Reset):
		if m.ctl.State() != sim.Idle {
			return m.setStatus("stop the simulation to reset the pose", true), nil
		}
		copy(m.geometry.Vertices, m.rest.Vertices)
		return m.setStatus("pose reset", false), nil

	case key.Matches(msg, m.keys.NextForce):
		if len(m.controls.Forces) > 0 {
			m.selected = (m.selected + 1) % len(m.controls.Forces)
		}
		return m, nil

	case key.Matches(msg, m.keys.More):
		return m.editForce(func(f *control.ForceControl) { f.Intensity = round2(f.Intensity + 0.1) }), nil
	case key.Matches(msg, m.keys.Less):
		return m.editForce(func(f *control.ForceControl) { f.Intensity = round2(f.Intensity - 0.1) }), nil
	case key.Matches(msg, m.keys.Grow):
		return m.editForce(func(f *control.ForceControl) { f.Radius += 5 }), nil
	case key.Matches(msg, m.keys.Shrink):
		return m.editForce(func(f *control.ForceControl) { f.Radius = max(0, f.Radius-5) }), nil
	case key.Matches(msg, m.keys.Scale):
		n := len(m.controls.Scales)
		return m.editForce(func(f *control.ForceControl) {
			if n > 0 {
				f.RadiusScaleIndex = (f.RadiusScaleIndex + 1) % n
			}
		}), nil

	case key.Matches(msg, m.keys.PolarUp):
		return m.setPolar(m.controls.Polar() + 1), nil
	case key.Matches(msg, m.keys.PolarDown):
		return m.setPolar(m.controls.Polar() - 1), nil

	case key.Matches(msg, m.keys.Speed):
		m.bySpeed = !m.bySpeed
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		return m.setStatus("display: "+m.rig.CycleMode(), false), nil

	case key.Matches(msg, m.keys.Save):
		name := m.sceneName + "-posed"
		path := filepath.Join(m.saveDir, name+".yaml")
		posed := scene.FromGeometry(name, m.geometry.Clone())
		return m, func() tea.Msg {
			return sceneSavedMsg{path: path, err: posed.Save(path)}
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) toggle() (Model, tea.Cmd) {
	if err := m.ctl.Toggle(); err != nil {
		return m.setStatus(err.Error(), true), nil
	}
	m.history.Clear()
	m.syncPlayer()
	return m, tea.SetWindowTitle(windowTitle(m.sceneName, m.ctl.State()))
}

// editForce applies fn to the selected force control and forwards the
// result to the simulation.
func (m Model) editForce(fn func(*control.ForceControl)) Model {
	if len(m.controls.Forces) == 0 {
		return m
	}
	f := &m.controls.Forces[m.selected]
	fn(f)
	m.ctl.Send(control.SetForce{Force: *f})
	return m
}

func (m Model) setPolar(n int) Model {
	n = max(n, 1)
	m.controls.PolarIterations = n
	m.ctl.Send(control.SetPolarIterations{N: n})
	return m
}

func (m Model) setStatus(s string, isErr bool) Model {
	m.status = s
	m.statusErr = isErr
	m.statusTime = time.Now()
	return m
}

// syncPlayer keeps audio playback in step with the simulation state.
func (m Model) syncPlayer() {
	if m.player == nil {
		return
	}
	if m.ctl.State() == sim.Running {
		m.player.Resume()
	} else {
		m.player.Pause()
	}
}

func (m Model) frame() Model {
	seek := m.nextSeek()
	m.lastSeek = seek
	m.ctl.Send(control.SetSeek{Seek: seek})
	m.ctl.Tick()
	m.frames++

	var speeds []float64
	if seq, ok := m.ctl.ComputeParticleVelocities(); ok {
		speeds = slices.Collect(seq)
		m.speeds = sim.SpeedSummary(slices.Values(speeds))
		if m.ctl.State() == sim.Running {
			m.history.Push(m.speeds.Mean)
		}
	} else {
		m.speeds = sim.Speeds{}
	}

	state := m.ctl.State()
	m.rig.Update(visualizer.Frame{
		Geometry: m.geometry,
		Speeds:   speeds,
		Rings:    m.rings(),
		Tick:     m.frames,
		Running:  state == sim.Running,
		BySpeed:  m.bySpeed,
	}, true)

	if m.status != "" && time.Since(m.statusTime) > statusLifetime {
		m.status = ""
	}
	return m
}

// nextSeek reads the seek input for this frame: the audio envelope when
// driving, the smoothed pointer otherwise.
func (m *Model) nextSeek() control.Seek {
	if m.envelope == nil {
		return m.seek.step()
	}
	idx := m.frames
	if m.player != nil {
		idx = uint64(m.player.Position().Seconds() * float64(m.envelope.FPS()))
	}
	return m.envelope.Seek(idx, m.reach)
}

// rings returns the force fields to draw: the live forces while a session
// exists, the configured ones otherwise.
func (m Model) rings() []visualizer.Ring {
	rings := make([]visualizer.Ring, 0, len(control.ForceIDs))
	selected := ""
	if m.selected < len(m.controls.Forces) {
		selected = m.controls.Forces[m.selected].ID
	}
	s := m.ctl.Session()
	for _, id := range control.ForceIDs {
		r := visualizer.Ring{Selected: id == selected}
		if f := sessionForce(s, id); f != nil {
			r.Center, r.Radius, r.Intensity = f.Position, f.Radius, f.Intensity
		} else {
			r.Radius = m.controls.ScaledRadius(id)
			if fc, ok := m.controls.Force(id); ok {
				r.Intensity = fc.Intensity
			}
			if id == control.ForceNudge {
				r.Center = m.lastSeek.Move
			}
		}
		rings = append(rings, r)
	}
	return rings
}

func sessionForce(s *sim.Session, id string) *sim.Force {
	if s == nil {
		return nil
	}
	return s.Force(id)
}

func (m Model) canvasSize() (cols, rows int) {
	return max(m.width-canvasLeft*2, 10), max(m.height-hudRows, 4)
}

// cellToWorld maps a terminal cell to the world point under the centre of
// that cell.
func (m Model) cellToWorld(x, y int) r2.Vec {
	dotX := float64((x-canvasLeft)*2) + 0.5
	dotY := float64((y-canvasTop)*4) + 1.5
	return m.rig.Transform().ToWorld(dotX, dotY)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	cols, _ := m.canvasSize()

	state := m.ctl.State()
	stateText := statusStyle.Render("○ idle")
	switch state {
	case sim.Running:
		stateText = runningStyle.Render("▶ running")
	case sim.Paused:
		stateText = statusStyle.Render("❚❚ paused")
	}
	clock := timeStyle.Render(util.FormatTicks(m.ctl.Ticks(), m.fps))
	left := headerStyle.Render("softrig") + "  " + titleStyle.Render(m.sceneName)
	if s := m.ctl.Session(); s != nil {
		st := s.Stats()
		left += labelStyle.Render(fmt.Sprintf("  %d particles  %d pins  %d links", st.Particles, st.Pins, st.Distances))
	}
	right := stateText + "  " + clock
	header := left + spaces(cols-lipgloss.Width(left)-lipgloss.Width(right)) + right

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + header + "\n")
	b.WriteString("\n")
	for line := range strings.SplitSeq(m.rig.View(), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	if len(m.controls.Forces) > 0 {
		f := m.controls.Forces[m.selected]
		b.WriteString("  " + labelStyle.Render("force ") + valueStyle.Render(renderForce(f, m.controls)) +
			labelStyle.Render(fmt.Sprintf("   polar %d", m.controls.Polar())) + "\n")
	}

	muscle := 0.0
	if state != sim.Idle && m.ctl.Ticks() > 0 {
		muscle = (sim.MuscleScale(m.ctl.Ticks()-1) - 0.5) / 0.5
	}
	sparkWidth := max(cols-m.meter.Width-40, 8)
	b.WriteString("  " + labelStyle.Render("muscle ") + m.meter.ViewAs(muscle) +
		labelStyle.Render("  speed ") + valueStyle.Render(renderSparkline(m.history.Last(sparkWidth), sparkWidth)) +
		timeStyle.Render(fmt.Sprintf(" max %.2f mean %.2f", m.speeds.Max, m.speeds.Mean)) + "\n")

	if m.envelope != nil {
		line := labelStyle.Render("drive ") + statusStyle.Render(m.track)
		if m.player != nil {
			elapsed, total := m.player.Position(), m.player.Duration()
			bar := renderProgressBar(elapsed.Seconds(), total.Seconds(), max(cols-lipgloss.Width(line)-14, 10))
			line += "  " + timeStyle.Render(util.FormatDuration(elapsed)) + " " + bar + " " + timeStyle.Render(util.FormatDuration(total))
		}
		b.WriteString("  " + line + "\n")
	}

	if m.status != "" {
		style := helpStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	}
	b.WriteString("  " + m.help.View(m.keys) + "\n")
	return b.String()
}

func windowTitle(sceneName string, state sim.State) string {
	switch state {
	case sim.Running:
		return "▶ " + sceneName + " · softrig"
	case sim.Paused:
		return "⏸ " + sceneName + " · softrig"
	default:
		return sceneName + " · softrig"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
