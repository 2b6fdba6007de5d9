package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mslcoach/internal/config"
	"mslcoach/internal/llm"
	"mslcoach/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.EventRepo().RecentLLMRequests(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-12s  %-24s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 96))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			model := e.Model
			if len(model) > 24 {
				model = model[:24]
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-24s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured LLM provider with one round trip",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.LLM.Validate(); err != nil {
			return err
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

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		ctx = llm.WithPurpose(ctx, llm.PurposeCheck)

		provider, err := llm.NewProvider(ctx, cfg.LLM, s.EventRepo())
		if err != nil {
			return fmt.Errorf("init provider: %w", err)
		}

		start := time.Now()
		resp, err := provider.Generate(ctx, llm.Request{
			Prompt:    "Reply with the single word: ok",
			MaxTokens: 8,
		})
		if err != nil {
			return fmt.Errorf("provider %s (%s) failed: %w", cfg.LLM.Provider, provider.ModelID(), err)
		}

		fmt.Printf("%s (%s) responded in %s (%d tokens in, %d out)\n",
			cfg.LLM.Provider, resp.Model, time.Since(start).Round(time.Millisecond),
			resp.Usage.InputTokens, resp.Usage.OutputTokens)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage by purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.EventRepo().RecentLLMRequests(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		type usage struct {
			calls, in, out int
			latency        int64
		}
		byPurpose := make(map[string]*usage)
		var order []string
		for _, e := range events {
			u := byPurpose[e.Purpose]
			if u == nil {
				u = &usage{}
				byPurpose[e.Purpose] = u
				order = append(order, e.Purpose)
			}
			u.calls++
			u.in += e.InputTokens
			u.out += e.OutputTokens
			u.latency += e.LatencyMs
		}

		fmt.Printf("%-16s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		fmt.Println(strings.Repeat("─", 72))

		var totalCalls, totalIn, totalOut int
		for _, p := range order {
			u := byPurpose[p]
			fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8d\n",
				p, u.calls, u.in, u.out, u.in+u.out, u.latency/int64(u.calls))
			totalCalls += u.calls
			totalIn += u.in
			totalOut += u.out
		}

		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (evaluation, model-answer, scenario)")
	llmStatsCmd.Flags().IntP("limit", "n", 1000, "Number of recent events to aggregate")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmCheckCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
