package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Reset a learner's XP, streak, history and lesson progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

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

		if !yes {
			fmt.Printf("Reset %s (%d XP)? [y/N] ", u.Username, u.XP)
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := st.Users().Reset(ctx, u.ID); err != nil {
			return fmt.Errorf("reset user: %w", err)
		}
		fmt.Printf("Reset %s.\n", u.Username)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
