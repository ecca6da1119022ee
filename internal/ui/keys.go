package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Toggle    key.Binding
	Pause     key.Binding
	Reset     key.Binding
	NextForce key.Binding
	More      key.Binding
	Less      key.Binding
	Grow      key.Binding
	Shrink    key.Binding
	Scale     key.Binding
	PolarUp   key.Binding
	PolarDown key.Binding
	Speed     key.Binding
	Mode      key.Binding
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "simulate")),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset pose")),
		NextForce: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next force")),
		More:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "intensity")),
		Less:      key.NewBinding(key.WithKeys("-", "_")),
		Grow:      key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "radius")),
		Shrink:    key.NewBinding(key.WithKeys("[")),
		Scale:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "radius scale")),
		PolarUp:   key.NewBinding(key.WithKeys(">", "."), key.WithHelp("</>", "polar steps")),
		PolarDown: key.NewBinding(key.WithKeys("<", ",")),
		Speed:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "speed colours")),
		Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "display mode")),
		Save:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save pose")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Pause, k.NextForce, k.More, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Pause, k.Reset},
		{k.NextForce, k.More, k.Grow, k.Scale},
		{k.PolarUp, k.Speed, k.Mode},
		{k.Save, k.Help, k.Quit},
	}
}

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}
