package watchui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgalloway/flowkit/pkg/flowkit"
)

// Update handles EventMsg/DoneMsg plus the usual bubbletea lifecycle messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		st := m.ensure(msg.Event.Activity)
		switch msg.Event.Kind {
		case flowkit.ActivityStarted:
			st.running = true
			st.done = false
		case flowkit.ActivityFinished:
			st.running = false
			st.done = true
			st.err = msg.Event.Err
		case flowkit.LoopIteration:
			st.iterations++
		case flowkit.SplitFanOut:
			st.running = true
		}
		return m, nil
	case DoneMsg:
		m.finished = true
		m.runErr = msg.Err
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}
	return m, nil
}
