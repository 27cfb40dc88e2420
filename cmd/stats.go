package cmd

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/codepath/internal/leaderboard"
	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/ui/components"
	"github.com/abhisek/codepath/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a learner's XP, streak, course progress and review schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		u, err := st.Users().Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		higher, err := st.Users().CountAbove(ctx, u.XP)
		if err != nil {
			return err
		}
		total, err := st.Users().Count(ctx)
		if err != nil {
			return err
		}
		lessons, err := st.Lessons().List(ctx)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		records, err := st.Progress().ListByUser(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		completed := 0
		for _, p := range records {
			if p.Status == learner.StatusCompleted {
				completed++
			}
		}

		rank := higher + 1
		tier := leaderboard.TierFor(u.XP)
		lipgloss.Println(theme.Title.Render(u.Username) + theme.Dim.Render("  "+u.ID))
		lipgloss.Printf("XP: %d  Status: %s  Streak: %d\n", u.XP, theme.Tier(tier).Render(string(tier)), u.Streak)
		lipgloss.Printf("Rank: %d of %d (%s)\n", rank, total,
			leaderboard.PercentileLabel(leaderboard.Percentile(rank, total)))
		lipgloss.Printf("Questions answered correctly: %d\n", len(u.History))
		lipgloss.Println(components.NewProgressBar("Course", completed, len(lessons), 60).View())

		concepts := u.SortedConcepts()
		if len(concepts) == 0 {
			return nil
		}

		lipgloss.Println()
		lipgloss.Println(theme.Header.Render(fmt.Sprintf("%-24s  %8s  %4s  %5s  %-16s  %s",
			"Concept", "Interval", "Reps", "Ease", "Next review", "Status")))
		lipgloss.Println(theme.Rule.Render(rule(80)))

		now := time.Now()
		for _, c := range concepts {
			status := c.Status(now)
			var label string
			if days := c.DaysUntilReview(now); days > 0 {
				label = fmt.Sprintf("%s (in %dd)", status, days)
			} else {
				label = fmt.Sprintf("%s (%.1fd)", status, c.OverdueDays(now))
			}
			lipgloss.Printf("%-24s  %7dd  %4d  %5.2f  %-16s  %s\n",
				c.Concept, c.Interval, c.Repetition, c.EaseFactor,
				c.NextReviewAt.Local().Format("2006-01-02 15:04"),
				theme.Review(status).Render(label))
		}
		return nil
	},
}
