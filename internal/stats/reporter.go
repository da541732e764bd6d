package stats

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	elapsedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cpsStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	throughputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Format renders one report line in the harness's classic format.
func Format(r Report) string {
	return fmt.Sprintf("Time: %.2fs, CPS: %.2f, Throughput: %.2f Gbps",
		r.Elapsed.Seconds(), r.CPS, r.Gbps)
}

// FormatStyled renders the same line with terminal colors.
func FormatStyled(r Report) string {
	return fmt.Sprintf("%s, %s, %s",
		elapsedStyle.Render(fmt.Sprintf("Time: %.2fs", r.Elapsed.Seconds())),
		cpsStyle.Render(fmt.Sprintf("CPS: %.2f", r.CPS)),
		throughputStyle.Render(fmt.Sprintf("Throughput: %.2f Gbps", r.Gbps)))
}

// ConsoleReporter writes one line per closed window.
type ConsoleReporter struct {
	Out    io.Writer
	Styled bool
}

// Report prints a single window.
func (c *ConsoleReporter) Report(r Report) {
	line := Format(r)
	if c.Styled {
		line = FormatStyled(r)
	}
	fmt.Fprintln(c.Out, line)
}
