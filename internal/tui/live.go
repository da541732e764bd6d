package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/terratrax/swgbench/internal/stats"
)

const maxVisibleWindows = 20

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	styleSubtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleRow     = lipgloss.NewStyle()
	styleLastRow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// reportMsg carries one closed reporting window into the model.
type reportMsg stats.Report

// doneMsg signals the run has finished.
type doneMsg struct{}

// LiveModel is the live dashboard shown during a run: one row per
// reporting window plus a footer with the running totals.
type LiveModel struct {
	Title   string
	reports []stats.Report
	totals  struct {
		bytes     uint64
		completed uint64
	}
	spin     spinner.Model
	done     bool
	quitting bool
	ch       <-chan stats.Report
}

// NewLiveModel builds the dashboard fed by the given report channel.
// The channel must be closed when the run ends.
func NewLiveModel(title string, ch <-chan stats.Report) *LiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &LiveModel{Title: title, spin: sp, ch: ch}
}

func (m *LiveModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForReport())
}

func (m *LiveModel) waitForReport() tea.Cmd {
	return func() tea.Msg {
		r, ok := <-m.ch
		if !ok {
			return doneMsg{}
		}
		return reportMsg(r)
	}
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case reportMsg:
		m.reports = append(m.reports, stats.Report(msg))
		m.totals.bytes += msg.Bytes
		m.totals.completed += msg.Completed
		return m, m.waitForReport()

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *LiveModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(m.Title) + "\n\n")
	b.WriteString(styleHeader.Render(fmt.Sprintf("%-12s %12s %18s", "Elapsed", "CPS", "Throughput")) + "\n")

	visible := m.reports
	if len(visible) > maxVisibleWindows {
		visible = visible[len(visible)-maxVisibleWindows:]
	}
	for i, r := range visible {
		style := styleRow
		if i == len(visible)-1 {
			style = styleLastRow
		}
		b.WriteString(style.Render(fmt.Sprintf("%-12s %12.2f %13.2f Gbps",
			formatElapsed(r.Elapsed), r.CPS, r.Gbps)) + "\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("run complete: %d requests, %.2f GB transferred",
			m.totals.completed, float64(m.totals.bytes)/1e9)))
	} else {
		b.WriteString(m.spin.View() + styleSubtle.Render(fmt.Sprintf(" generating: %d requests so far (q to quit)",
			m.totals.completed)))
	}
	b.WriteString("\n")
	return b.String()
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
