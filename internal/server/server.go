package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mslcoach/internal/artifacts"
	"mslcoach/internal/bank"
	"mslcoach/internal/progress"
	"mslcoach/internal/store"
)

// SessionSubmitter processes completed practice sessions. Satisfied by
// progress.Aggregator.
type SessionSubmitter interface {
	SubmitSession(ctx context.Context, session progress.Session) (*progress.SubmitResult, error)
}

// ArtifactSource serves cached AI-generated content. Satisfied by
// artifacts.Service.
type ArtifactSource interface {
	ModelAnswer(ctx context.Context, questionID int, personaID string, variantSeed int) (*artifacts.ModelAnswer, bool, error)
	Scenario(ctx context.Context, questionID int, personaID string, variantSeed int) (*artifacts.Scenario, bool, error)
}

// Server is the HTTP surface over the engine. Handlers shape requests and
// responses; all semantics live in the packages behind the interfaces.
type Server struct {
	bank      *bank.Bank
	submitter SessionSubmitter
	artifacts ArtifactSource
	progress  store.ProgressRepo
	sessions  store.SessionRepo
	log       *zap.Logger
	router    *gin.Engine
}

// New wires the routes. A nil logger disables request logging.
func New(b *bank.Bank, submitter SessionSubmitter, src ArtifactSource, progressRepo store.ProgressRepo, sessionRepo store.SessionRepo, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		bank:      b,
		submitter: submitter,
		artifacts: src,
		progress:  progressRepo,
		sessions:  sessionRepo,
		log:       log,
		router:    router,
	}

	router.GET("/healthz", s.handleHealth)
	router.GET("/personas", s.handlePersonas)
	router.GET("/personas/:id", s.handlePersona)
	router.GET("/questions", s.handleQuestions)
	router.GET("/questions/:id", s.handleQuestion)
	router.GET("/categories", s.handleCategories)
	router.POST("/evaluate", s.handleEvaluate)
	router.GET("/model-answer/:question_id", s.handleModelAnswer)
	router.GET("/scenario/:question_id", s.handleScenario)
	router.GET("/progress/:user_id", s.handleProgress)
	router.GET("/achievements/:user_id", s.handleAchievements)
	router.GET("/sessions/:user_id", s.handleSessions)

	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
