package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mslcoach/internal/achievements"
	"mslcoach/internal/store"
	"mslcoach/internal/xp"
)

var (
	statsTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8B5CF6"))

	statsLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))

	statsValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8FAFC")).
			Bold(true)

	statsDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

var statsCmd = &cobra.Command{
	Use:   "stats [user-id]",
	Short: "Show a user's practice progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := "default"
		if len(args) == 1 {
			userID = args[0]
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

		p, _, err := s.ProgressRepo().Read(context.Background(), userID)
		if err != nil {
			return fmt.Errorf("read progress: %w", err)
		}

		fmt.Println(statsTitle.Render(fmt.Sprintf("Progress — %s", userID)))
		fmt.Println()

		if p.TotalSessions == 0 {
			fmt.Println(statsDim.Render("No practice sessions yet."))
			return nil
		}

		level := xp.LevelOf(p.TotalXP)
		printStat("Level", fmt.Sprintf("%d  (%d XP, %d to next)", level.Level, p.TotalXP, level.XPToNext))
		printStat("Streak", fmt.Sprintf("%d day(s), longest %d", p.CurrentStreak, p.LongestStreak))
		printStat("Sessions", fmt.Sprintf("%d (%d interactions)", p.TotalSessions, p.TotalInteractions))
		printStat("Average", fmt.Sprintf("%.1f  (best %.1f)", p.AverageScore, p.BestScore))

		if len(p.CategoryStats) > 0 {
			fmt.Println()
			fmt.Println(statsTitle.Render("By Category"))
			printStatTable(p.CategoryStats)
		}
		if len(p.PersonaStats) > 0 {
			fmt.Println()
			fmt.Println(statsTitle.Render("By Persona"))
			printStatTable(p.PersonaStats)
		}

		fmt.Println()
		fmt.Println(statsTitle.Render("Achievements"))
		for _, st := range achievements.AllWithStatus(p) {
			mark := statsDim.Render("○")
			name := statsDim.Render(st.Name)
			if st.Unlocked {
				mark = statsValue.Render(st.Icon)
				name = statsValue.Render(st.Name)
			}
			fmt.Printf("  %s %s  %s\n", mark, name, statsDim.Render(st.Description))
		}

		return nil
	},
}

func printStat(label, value string) {
	fmt.Printf("  %s  %s\n", statsLabel.Render(fmt.Sprintf("%-9s", label)), statsValue.Render(value))
}

func printStatTable(stats map[string]*store.CategoryStat) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		st := stats[k]
		name := k
		if len(name) > 40 {
			name = name[:40]
		}
		bar := scoreBar(st.AverageScore)
		fmt.Printf("  %s %s %s\n",
			statsLabel.Render(fmt.Sprintf("%-42s", name)),
			bar,
			statsDim.Render(fmt.Sprintf("%.1f over %d", st.AverageScore, st.Count)))
	}
}

func scoreBar(avg float64) string {
	const width = 20
	filled := int(avg / 100 * width)
	if filled > width {
		filled = width
	}
	color := lipgloss.Color("#F43F5E")
	switch {
	case avg >= 80:
		color = lipgloss.Color("#22C55E")
	case avg >= 60:
		color = lipgloss.Color("#F97316")
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(strings.Repeat("█", filled)) + statsDim.Render(strings.Repeat("░", width-filled))
}
