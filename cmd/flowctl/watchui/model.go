// Package watchui renders a live bubbletea dashboard over a running
// flowkit.Pipeline, fed by a flowkit.Observer wired to the same program.
package watchui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgalloway/flowkit/pkg/flowkit"
)

// EventMsg wraps a flowkit.Event as a bubbletea message.
type EventMsg struct {
	Event flowkit.Event
}

// DoneMsg reports that the run has finished, successfully or not.
type DoneMsg struct {
	Err error
}

type activityState struct {
	name       string
	running    bool
	iterations int
	err        error
	done       bool
}

// Model is the bubbletea state for a single pipeline run's dashboard.
type Model struct {
	pipelineName string
	activities   map[string]*activityState
	order        []string
	finished     bool
	runErr       error
	progress     progressBar
}

// NewModel constructs an empty dashboard for the named pipeline. totalActivities
// sizes the progress bar; it is the count of top-level activities the
// pipeline's Builder registered, known before the run starts.
func NewModel(pipelineName string, totalActivities int) Model {
	return Model{
		pipelineName: pipelineName,
		activities:   make(map[string]*activityState),
		progress:     newProgressBar(totalActivities),
	}
}

func (m Model) completedCount() int {
	n := 0
	for _, st := range m.activities {
		if st.done {
			n++
		}
	}
	return n
}

// Init satisfies tea.Model; the dashboard is driven entirely by EventMsg/DoneMsg.
func (m Model) Init() tea.Cmd { return nil }

func (m *Model) ensure(name string) *activityState {
	st, ok := m.activities[name]
	if !ok {
		st = &activityState{name: name}
		m.activities[name] = st
		m.order = append(m.order, name)
	}
	return st
}
