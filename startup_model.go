package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/softrig/internal/ui"
)

type startupPhase uint8

const (
	phaseBrowse startupPhase = iota
	phaseOpening
)

type startupResolvedMsg struct {
	model ui.Model
	err   error
}

type startupStatusMsg string

// startupModel picks a scene when none was given, then opens it behind a
// spinner and hands the program over to the simulation model.
type startupModel struct {
	browser  ui.BrowserModel
	browsing bool // browser has been built
	phase    startupPhase
	arg      string
	opts     openOptions
	errMsg   string
	width    int
	height   int
	spinner  spinner.Model
	status   string
	statusCh chan string
}

// newStartupModel opens arg directly, or starts in the browser when arg is
// empty.
func newStartupModel(arg string, opts openOptions) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	m := startupModel{
		phase:   phaseBrowse,
		arg:     arg,
		opts:    opts,
		spinner: s,
		status:  "opening",
	}
	if arg == "" {
		m.browser = ui.NewBrowser()
		m.browsing = true
	} else {
		m.phase = phaseOpening
		m.statusCh = make(chan string, 8)
	}
	return m
}

func (m startupModel) Init() tea.Cmd {
	if m.phase == phaseOpening {
		return tea.Batch(m.spinner.Tick, m.waitForStatus(), openSceneCmd(m.arg, m.opts, m.statusCh))
	}
	return tea.Batch(m.browser.Init(), m.spinner.Tick)
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.phase == phaseBrowse {
			return m.updateBrowser(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.phase == phaseOpening {
			return m, cmd
		}
		return m, nil

	case ui.BrowserCancelledMsg:
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case ui.BrowserSelectedMsg:
		m.phase = phaseOpening
		m.arg = msg.Scene
		m.errMsg = ""
		m.status = "opening"
		m.statusCh = make(chan string, 8)
		return m, tea.Batch(
			m.spinner.Tick,
			m.waitForStatus(),
			openSceneCmd(msg.Scene, m.opts, m.statusCh),
		)

	case startupStatusMsg:
		m.status = string(msg)
		return m, m.waitForStatus()

	case startupResolvedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.statusCh = nil
			if !m.browsing {
				// Started from the command line: there is no list to go back to.
				m.browser = ui.NewBrowser()
				m.browsing = true
			}
			m.phase = phaseBrowse
			return m, nil
		}

		cmds := []tea.Cmd{msg.model.Init()}
		if m.width > 0 || m.height > 0 {
			w, h := m.width, m.height
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: w, Height: h}
			})
		}
		return msg.model, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.phase == phaseOpening && startupIsQuit(msg) {
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
	}

	if m.phase == phaseBrowse {
		return m.updateBrowser(msg)
	}
	return m, nil
}

func (m startupModel) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.browser.Update(msg)
	if browser, ok := model.(ui.BrowserModel); ok {
		m.browser = browser
	}
	return m, cmd
}

func (m startupModel) waitForStatus() tea.Cmd {
	if m.statusCh == nil {
		return nil
	}
	statusCh := m.statusCh
	return func() tea.Msg {
		status, ok := <-statusCh
		if !ok {
			return nil
		}
		return startupStatusMsg(status)
	}
}

func (m startupModel) View() string {
	if m.phase == phaseBrowse {
		if m.browser.HasError() {
			return "\n  softrig\n\n  " + m.browser.Error().Error() + "\n"
		}
		if m.errMsg == "" {
			return m.browser.View()
		}
		return "\n  softrig\n\n  " + startupErrorStyle.Render(m.errMsg) + "\n\n" + indentBlock(m.browser.View(), "  ")
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("softrig"))
	b.WriteString("\n\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(startupStatusStyle.Render(capitalize(m.status) + "..."))
	b.WriteString("\n\n  ")
	b.WriteString(startupHelpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func openSceneCmd(arg string, opts openOptions, statusCh chan string) tea.Cmd {
	return func() tea.Msg {
		defer close(statusCh)
		model, err := buildSimulationModel(arg, opts, func(phase string) {
			select {
			case statusCh <- phase:
			default:
			}
		})
		return startupResolvedMsg{model: model, err: err}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	startupErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#FF8080"})
)
