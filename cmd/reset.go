package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mslcoach/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Delete a user's progress",
	Long:  "Removes the user's progress snapshot: XP, level, streak, stats, and unlocked achievements. Session history and cached artifacts are kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			fmt.Printf("Delete all progress for %q? [y/N] ", userID)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.ProgressRepo().Delete(context.Background(), userID); err != nil {
			return err
		}
		fmt.Printf("Progress for %q deleted.\n", userID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
