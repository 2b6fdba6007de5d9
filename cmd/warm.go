package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mslcoach/internal/artifacts"
	"mslcoach/internal/bank"
	"mslcoach/internal/config"
	"mslcoach/internal/contentcache"
	"mslcoach/internal/llm"
	"mslcoach/internal/store"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Pre-generate artifacts for the whole question bank",
	Long: "Generates and caches model answers (generic and persona-tailored) and " +
		"scenarios for every question, so interactive requests never wait on the " +
		"oracle. Already-cached artifacts are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		withScenarios, _ := cmd.Flags().GetBool("scenarios")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("db"); p != "" {
			if err := store.EnsureDir(p); err != nil {
				return err
			}
			cfg.DBPath = p
		}
		if err := cfg.LLM.Validate(); err != nil {
			return err
		}

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		b, err := bank.Load(cfg.QuestionsPath, cfg.PersonasPath)
		if err != nil {
			return fmt.Errorf("load bank: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo())
		if err != nil {
			return fmt.Errorf("init LLM provider: %w", err)
		}
		svc := artifacts.NewService(provider, contentcache.New(st.CacheRepo(), nil), b, artifacts.DefaultConfig(), nil)

		type job struct {
			kind       contentcache.Kind
			questionID int
			personaID  string
		}
		var jobs []job
		for _, q := range b.Questions(bank.Filter{}) {
			jobs = append(jobs, job{contentcache.KindModelAnswer, q.ID, ""})
			for _, pid := range q.Personas {
				jobs = append(jobs, job{contentcache.KindModelAnswer, q.ID, pid})
				if withScenarios {
					jobs = append(jobs, job{contentcache.KindScenario, q.ID, pid})
				}
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		generated := make(chan string, len(jobs))
		for _, j := range jobs {
			g.Go(func() error {
				var cached bool
				var err error
				switch j.kind {
				case contentcache.KindScenario:
					_, cached, err = svc.Scenario(gctx, j.questionID, j.personaID, 0)
				default:
					_, cached, err = svc.ModelAnswer(gctx, j.questionID, j.personaID, 0)
				}
				if err != nil {
					return fmt.Errorf("q%d/%s %s: %w", j.questionID, j.personaID, j.kind, err)
				}
				if !cached {
					generated <- fmt.Sprintf("q%d %s (%s)", j.questionID, j.kind, personaLabel(j.personaID))
				}
				return nil
			})
		}
		err = g.Wait()
		close(generated)

		count := 0
		for msg := range generated {
			fmt.Println("generated", msg)
			count++
		}
		fmt.Printf("%d generated, %d already cached\n", count, len(jobs)-count)
		return err
	},
}

func personaLabel(id string) string {
	if id == "" {
		return "generic"
	}
	return id
}

func init() {
	warmCmd.Flags().IntP("concurrency", "c", 4, "Concurrent generation calls")
	warmCmd.Flags().Bool("scenarios", true, "Also pre-generate roleplay scenarios")
}
