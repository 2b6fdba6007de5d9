package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mslcoach/internal/artifacts"
	"mslcoach/internal/bank"
	"mslcoach/internal/config"
	"mslcoach/internal/contentcache"
	"mslcoach/internal/llm"
	"mslcoach/internal/progress"
	"mslcoach/internal/scoring"
	"mslcoach/internal/server"
	"mslcoach/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			cfg.Addr = a
		}
		if err := cfg.LLM.Validate(); err != nil {
			return err
		}

		logger, err := config.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

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

		scorer := scoring.NewEngine(provider, scoring.DefaultConfig())
		aggregator := progress.NewAggregator(scorer, st.ProgressRepo(), st.SessionRepo(), b, logger)
		cache := contentcache.New(st.CacheRepo(), logger)
		artifactSvc := artifacts.NewService(provider, cache, b, artifacts.DefaultConfig(), logger)

		srv := server.New(b, aggregator, artifactSvc, st.ProgressRepo(), st.SessionRepo(), logger)
		return srv.Run(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MSLCOACH_ADDR)")
}
