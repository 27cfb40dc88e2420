package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/ui/theme"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the installed curriculum",
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, _ := cmd.Flags().GetString("unit")
		userID, _ := cmd.Flags().GetString("user")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		version, err := st.Curriculum().Version(ctx)
		if err != nil {
			return err
		}
		lessons, err := st.Lessons().List(ctx)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		if len(lessons) == 0 {
			fmt.Println("No curriculum installed. Run `codepath seed`.")
			return nil
		}

		var byLesson map[string]*learner.Progress
		if userID != "" {
			records, err := st.Progress().ListByUser(ctx, userID)
			if err != nil {
				return fmt.Errorf("list progress: %w", err)
			}
			byLesson = make(map[string]*learner.Progress, len(records))
			for i := range records {
				byLesson[records[i].LessonID] = &records[i]
			}
		}

		lipgloss.Println(theme.Header.Render(fmt.Sprintf("%5s  %-20s  %-32s  %-14s  %-12s  %4s  %s",
			"Order", "Slug", "Title", "Unit", "Level", "XP", "Status")))
		lipgloss.Println(theme.Rule.Render(rule(106)))

		shown := 0
		for _, l := range lessons {
			if unit != "" && !strings.EqualFold(l.Unit, unit) {
				continue
			}
			title := l.Title
			if len(title) > 32 {
				title = title[:29] + "..."
			}
			status := ""
			if byLesson != nil {
				s := learner.EffectiveStatus(byLesson[l.ID], l.Ordinal)
				status = theme.LessonStatus(s).Render(string(s))
			}
			lipgloss.Printf("%5d  %-20s  %-32s  %-14s  %-12s  %4d  %s\n",
				l.Ordinal, l.Slug, title, l.Unit, l.Level, l.XPReward, status)
			shown++
		}

		lipgloss.Println(theme.Dim.Render(fmt.Sprintf("\n%d lessons (curriculum %s)", shown, version)))
		return nil
	},
}

func init() {
	lessonsCmd.Flags().String("unit", "", "Only show lessons in this unit")
	lessonsCmd.Flags().String("user", "", "Show lesson status for this learner")
}

func rule(n int) string {
	return strings.Repeat("─", n)
}
