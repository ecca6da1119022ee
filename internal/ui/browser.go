package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/softrig/internal/scene"
)

// BrowserSelectedMsg reports the picked scene. Scene is a file path or a
// built-in scene name, suitable for scene.Resolve.
type BrowserSelectedMsg struct {
	Scene string
}

// BrowserCancelledMsg reports that the user left the browser.
type BrowserCancelledMsg struct{}

type sceneItem struct {
	name   string
	source string
	arg    string
}

func (i sceneItem) Title() string       { return i.name }
func (i sceneItem) Description() string { return i.source }
func (i sceneItem) FilterValue() string { return i.name }

type openItem struct{}

func (i openItem) Title() string       { return "Open scene file..." }
func (i openItem) Description() string { return "enter a path to a scene file" }
func (i openItem) FilterValue() string { return "open" }

// BrowserModel is the Bubbletea model for the scene picker.
type BrowserModel struct {
	list     list.Model
	input    textinput.Model
	pathMode bool
	err      error
}

// NewBrowser creates a scene picker listing the built-in scenes and the
// scene files in the current directory.
func NewBrowser() BrowserModel {
	paths, err := scene.List(".")
	if err != nil {
		return BrowserModel{err: fmt.Errorf("cannot read directory: %w", err)}
	}

	items := []list.Item{openItem{}}
	for _, name := range scene.BuiltinNames() {
		items = append(items, sceneItem{name: name, source: "built-in", arg: name})
	}
	for _, p := range paths {
		base := filepath.Base(p)
		ext := filepath.Ext(base)
		items = append(items, sceneItem{name: strings.TrimSuffix(base, ext), source: ext, arg: p})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = "softrig"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Placeholder = "scenes/arm.yaml"
	ti.CharLimit = 1024
	ti.Width = 60

	return BrowserModel{list: l, input: ti}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("softrig")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.pathMode {
		return m.updatePathInput(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case openItem:
				m.pathMode = true
				m.input.Focus()
				return m, tea.Batch(textinput.Blink, tea.SetWindowTitle("softrig · open scene"))
			case sceneItem:
				return m, selectScene(item.arg)
			}
		case "q", "esc", "ctrl+c":
			return m, cancelBrowser
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) updatePathInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path != "" {
				m.pathMode = false
				m.input.Reset()
				m.input.Blur()
				return m, selectScene(path)
			}
		case "esc":
			m.pathMode = false
			m.input.Reset()
			m.input.Blur()
			return m, tea.SetWindowTitle("softrig")
		case "ctrl+c":
			return m, cancelBrowser
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func selectScene(arg string) tea.Cmd {
	return func() tea.Msg { return BrowserSelectedMsg{Scene: arg} }
}

func cancelBrowser() tea.Msg { return BrowserCancelledMsg{} }

func (m BrowserModel) View() string {
	if m.pathMode {
		s := "\n"
		s += "  " + headerStyle.Render("softrig") + "\n"
		s += "\n"
		s += "  " + statusStyle.Render("Scene file:") + "\n"
		s += "  " + m.input.View() + "\n"
		s += "\n"
		s += "  " + helpStyle.Render("enter confirm  esc back  ctrl+c quit") + "\n"
		return s
	}
	return m.list.View()
}
