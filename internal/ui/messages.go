package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type frameMsg time.Time

// autostartMsg activates the simulation once the program is running.
type autostartMsg struct{}

type sceneSavedMsg struct {
	path string
	err  error
}

func tickCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
