package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mslcoach/internal/bank"
	"mslcoach/internal/contentcache"
	"mslcoach/internal/llm"
)

// Config tunes artifact generation calls.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns generation defaults. Temperature matches the
// creative register of the content; determinism comes from the cache, not
// the sampler.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.5,
		Timeout:     60 * time.Second,
	}
}

// Service produces scenario and model-answer artifacts through the
// write-once content cache. Each (kind, question, persona, variant) is
// generated at most once; afterwards every caller gets the committed copy.
type Service struct {
	provider llm.Provider
	cache    *contentcache.Cache
	bank     *bank.Bank
	cfg      Config
	log      *zap.Logger
}

// NewService creates an artifact service. A nil logger disables logging.
func NewService(provider llm.Provider, cache *contentcache.Cache, b *bank.Bank, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, cache: cache, bank: b, cfg: cfg, log: log}
}

// ModelAnswer returns the exemplar answer for a question, tailored to the
// persona when one is given (empty or "generic" means untailored). The
// boolean reports whether the artifact was already cached.
func (s *Service) ModelAnswer(ctx context.Context, questionID int, personaID string, variantSeed int) (*ModelAnswer, bool, error) {
	q, ok := s.bank.Question(questionID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}

	var persona *bank.Persona
	keyPersona := GenericPersonaID
	if personaID != "" && personaID != GenericPersonaID {
		p, ok := s.bank.Persona(personaID)
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrUnknownPersona, personaID)
		}
		persona = &p
		keyPersona = personaID
	}

	key := contentcache.Key{
		Kind:        contentcache.KindModelAnswer,
		QuestionID:  questionID,
		PersonaID:   keyPersona,
		VariantSeed: variantSeed,
	}

	content, cached, err := s.cache.GetOrGenerate(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.generateModelAnswer(ctx, q, persona)
	})
	if err != nil {
		return nil, false, err
	}

	var answer ModelAnswer
	if err := json.Unmarshal(content, &answer); err != nil {
		return nil, false, fmt.Errorf("decode cached model answer %s: %w", key, err)
	}
	return &answer, cached, nil
}

// Scenario returns the roleplay setup for a question and persona. Unlike
// model answers, scenarios always need a persona: the setup is the
// physician walking in.
func (s *Service) Scenario(ctx context.Context, questionID int, personaID string, variantSeed int) (*Scenario, bool, error) {
	q, ok := s.bank.Question(questionID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	p, ok := s.bank.Persona(personaID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownPersona, personaID)
	}

	key := contentcache.Key{
		Kind:        contentcache.KindScenario,
		QuestionID:  questionID,
		PersonaID:   personaID,
		VariantSeed: variantSeed,
	}

	content, cached, err := s.cache.GetOrGenerate(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.generateScenario(ctx, q, p, variantSeed)
	})
	if err != nil {
		return nil, false, err
	}

	var scenario Scenario
	if err := json.Unmarshal(content, &scenario); err != nil {
		return nil, false, fmt.Errorf("decode cached scenario %s: %w", key, err)
	}
	return &scenario, cached, nil
}

func (s *Service) generateModelAnswer(ctx context.Context, q bank.Question, persona *bank.Persona) (json.RawMessage, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeModelAnswer)
	resp, err := s.generate(ctx, modelAnswerSystemPrompt, buildModelAnswerPrompt(q, persona), modelAnswerSchema)
	if err != nil {
		return nil, err
	}

	var answer ModelAnswer
	if err := json.Unmarshal(resp.Content, &answer); err != nil {
		return nil, fmt.Errorf("parse model answer: %w", err)
	}

	answer.QuestionID = q.ID
	answer.Question = q.Question
	answer.Category = q.Category
	if persona != nil {
		answer.PersonaID = persona.ID
		answer.PersonaName = persona.Name
		answer.PersonaTailored = true
	}
	if len(answer.KeyPoints) == 0 {
		answer.KeyPoints = q.KeyThemes
	}

	return json.Marshal(answer)
}

func (s *Service) generateScenario(ctx context.Context, q bank.Question, p bank.Persona, variantSeed int) (json.RawMessage, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeScenario)
	resp, err := s.generate(ctx, scenarioSystemPrompt, buildScenarioPrompt(q, p, variantSeed), scenarioSchema)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := json.Unmarshal(resp.Content, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	scenario.QuestionID = q.ID
	scenario.PersonaID = p.ID
	scenario.PersonaName = p.Name

	return json.Marshal(scenario)
}

func (s *Service) generate(ctx context.Context, system, user string, schema *llm.Schema) (*llm.Response, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	return s.provider.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      user,
		Schema:      schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}
