package watchui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard's current state.
func (m Model) View() string {
	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("flowctl watch • %s", m.pipelineName)))

	if len(m.order) > 0 {
		sections = append(sections, sectionStyle.Render("Activities"))
		var lines []string
		for _, name := range m.order {
			st := m.activities[name]
			lines = append(lines, fmt.Sprintf(" %s %s%s", statusIcon(st), st.name, iterationSuffix(st)))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, sectionStyle.Render("Progress"), m.progress.View(m.completedCount()))
	sections = append(sections, sectionStyle.Render("Summary"), m.summary())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func iterationSuffix(st *activityState) string {
	if st.iterations == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d iterations)", st.iterations)
}

func statusIcon(st *activityState) string {
	switch {
	case st.err != nil:
		return failureStyle.Render("✗")
	case st.done:
		return successStyle.Render("✓")
	case st.running:
		return runningStyle.Render("⏳")
	default:
		return pendingStyle.Render("…")
	}
}

func (m Model) summary() string {
	if !m.finished {
		return pendingStyle.Render("running…")
	}
	if m.runErr != nil {
		return failureStyle.Render(fmt.Sprintf("failed: %v", m.runErr))
	}
	return successStyle.Render("completed")
}
