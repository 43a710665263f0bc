package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ProgressModel - Chain progress bar
// =============================================================================

// stepMsg reports chain progress: done of total steps completed.
type stepMsg struct {
	done  int
	total int
}

// finishedMsg tells the progress bar to exit its event loop.
type finishedMsg struct{}

// ProgressModel is the bubbletea model for the chain progress bar.
type ProgressModel struct {
	Done  int
	Total int
	Width int
}

// NewProgressModel creates a progress bar for a run of total steps.
func NewProgressModel(total int) ProgressModel {
	return ProgressModel{Total: total, Width: 40}
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width - 20
		if m.Width < 10 {
			m.Width = 10
		}
		if m.Width > 60 {
			m.Width = 60
		}
	case stepMsg:
		m.Done = msg.done
		m.Total = msg.total
	case finishedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.Total <= 0 {
		return ""
	}

	filled := m.Done * m.Width / m.Total
	if filled > m.Width {
		filled = m.Width
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(styleBarFilled.Render(strings.Repeat("█", filled)))
	b.WriteString(styleBarEmpty.Render(strings.Repeat("░", m.Width-filled)))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %d/%d steps", m.Done, m.Total)))
	b.WriteString("\n")
	return b.String()
}
