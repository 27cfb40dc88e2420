// Package theme holds the terminal palette for the command-line reports.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/leaderboard"
	"github.com/abhisek/codepath/internal/spacedrep"
)

var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Rule = lipgloss.NewStyle().
		Foreground(Border)
)

// LessonStatus styles a lesson status cell.
func LessonStatus(s learner.Status) lipgloss.Style {
	switch s {
	case learner.StatusCompleted:
		return lipgloss.NewStyle().Foreground(Success).Bold(true)
	case learner.StatusUnlocked:
		return lipgloss.NewStyle().Foreground(Secondary)
	default:
		return Dim
	}
}

// Review styles a review status cell.
func Review(s spacedrep.ReviewStatus) lipgloss.Style {
	switch s {
	case spacedrep.ReviewOverdue:
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	case spacedrep.ReviewDue:
		return lipgloss.NewStyle().Foreground(Accent)
	default:
		return Dim
	}
}

// Tier styles a leaderboard title.
func Tier(t leaderboard.Tier) lipgloss.Style {
	switch t {
	case leaderboard.TierProLogicist:
		return lipgloss.NewStyle().Foreground(Accent).Bold(true)
	case leaderboard.TierKernelContributor:
		return lipgloss.NewStyle().Foreground(Primary).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Secondary)
	}
}
