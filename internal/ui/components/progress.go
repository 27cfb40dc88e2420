// Package components renders reusable pieces of the command-line reports.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codepath/internal/ui/theme"
)

// ProgressBar is a one-line bar of filled and empty cells.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar builds a bar for done out of total. A zero total renders
// an empty bar.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	return ProgressBar{Label: label, Percent: pct, ShowPercent: true, Width: width}
}

// Cells returns the filled and empty cell counts for the bar area.
func (p ProgressBar) Cells(barWidth int) (filled, empty int) {
	filled = int(float64(barWidth) * p.Percent)
	filled = max(0, min(filled, barWidth))
	return filled, barWidth - filled
}

// View renders the bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(theme.Header.Render(p.Label) + "  ")
	}

	var pct string
	if p.ShowPercent {
		pct = fmt.Sprintf("  %d%%", int(p.Percent*100))
	}
	barWidth := max(4, p.Width-lipgloss.Width(b.String())-len(pct))

	filled, empty := p.Cells(barWidth)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", empty)))

	if pct != "" {
		b.WriteString(theme.Dim.Render(pct))
	}
	return b.String()
}
