package variations

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/brightlisting/rewriter/internal/domain"
	"github.com/brightlisting/rewriter/internal/genai"
	"github.com/brightlisting/rewriter/internal/tokens"
)

const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 700

	// defaultPromptBudget caps the composed prompt. When exceeded, the
	// comparable-insights block is dropped first; it is the least
	// load-bearing research note.
	defaultPromptBudget = 3000
)

// Generator fans out one request per tone spec and joins on all of them.
type Generator struct {
	gen          genai.Generator
	model        string
	temperature  float32
	maxTokens    int
	promptBudget int
	counter      *tokens.Counter
	logger       *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSampling overrides the variation sampling parameters.
func WithSampling(temperature float32, maxTokens int) Option {
	return func(g *Generator) {
		g.temperature = temperature
		g.maxTokens = maxTokens
	}
}

// WithPromptBudget overrides the prompt token budget.
func WithPromptBudget(budget int) Option {
	return func(g *Generator) {
		if budget > 0 {
			g.promptBudget = budget
		}
	}
}

// New creates a variation Generator. gen is expected to already carry
// retry policy.
func New(gen genai.Generator, model string, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		gen:          gen,
		model:        model,
		temperature:  defaultTemperature,
		maxTokens:    defaultMaxTokens,
		promptBudget: defaultPromptBudget,
		counter:      tokens.NewCounter(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate issues all three tone requests concurrently and returns exactly
// three results in the fixed tone order. If any single request exhausts
// its retries the whole call fails and no partial set is returned; there
// is no fallback text that can stand in for a missing variation.
func (g *Generator) Generate(ctx context.Context, lctx *domain.ListingContext) ([]domain.VariationResult, int, error) {
	results := make([]domain.VariationResult, len(Specs))
	promptTokens := 0

	eg, ctx := errgroup.WithContext(ctx)
	for i, spec := range Specs {
		messages, estimate := g.messagesFor(spec, lctx)
		if i == 0 {
			promptTokens = estimate
		}

		req := &genai.CompletionRequest{
			Model:       g.model,
			Messages:    messages,
			Temperature: g.temperature,
			MaxTokens:   g.maxTokens,
		}

		slot, tone := i, spec.Tone
		eg.Go(func() error {
			text, err := g.gen.Generate(ctx, req)
			if err != nil {
				g.logger.Error("variation generation failed",
					slog.String("tone", string(tone)),
					slog.String("error", err.Error()),
				)
				return err
			}
			results[slot] = domain.VariationResult{Tone: tone, Text: text}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, promptTokens, err
	}

	return results, promptTokens, nil
}

// messagesFor builds the instruction list for one tone, trimming the
// comparable-insights note when the composed prompt exceeds the budget.
func (g *Generator) messagesFor(spec Spec, lctx *domain.ListingContext) ([]genai.Message, int) {
	messages := buildMessages(spec, lctx, true)
	estimate := g.counter.CountMessages(messages)
	if estimate <= g.promptBudget {
		return messages, estimate
	}

	g.logger.Warn("variation prompt over budget, dropping comparable insights",
		slog.String("tone", string(spec.Tone)),
		slog.Int("estimated_tokens", estimate),
		slog.Int("budget", g.promptBudget),
	)
	messages = buildMessages(spec, lctx, false)
	return messages, g.counter.CountMessages(messages)
}
