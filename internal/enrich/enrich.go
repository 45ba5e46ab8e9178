// Package enrich issues the best-effort context-gathering requests that
// precede variation generation: property facts, neighborhood amenities,
// and comparable-listing insights for the subject address.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/brightlisting/rewriter/internal/domain"
	"github.com/brightlisting/rewriter/internal/genai"
)

const (
	// Enrichment calls are cheap, factual lookups: low temperature, short
	// completions.
	defaultTemperature = 0.3
	defaultMaxTokens   = 300
)

// Enricher fans out the three enrichment requests concurrently. A slot
// whose retries are exhausted degrades to the fixed fallback text; the
// fan-out as a whole never fails.
type Enricher struct {
	gen         genai.Generator
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithSampling overrides the enrichment sampling parameters.
func WithSampling(temperature float32, maxTokens int) Option {
	return func(e *Enricher) {
		e.temperature = temperature
		e.maxTokens = maxTokens
	}
}

// New creates an Enricher. gen is expected to already carry retry policy.
func New(gen genai.Generator, model string, logger *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		gen:         gen,
		model:       model,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich issues all three requests concurrently and always returns exactly
// three results in the fixed kind order, regardless of completion order or
// individual failures. Each branch owns its own slot, so no locking is
// needed beyond the join.
func (e *Enricher) Enrich(ctx context.Context, input domain.ListingInput) []domain.EnrichmentResult {
	results := make([]domain.EnrichmentResult, len(domain.EnrichmentKinds))

	var wg sync.WaitGroup
	for i, kind := range domain.EnrichmentKinds {
		wg.Add(1)
		go func(slot int, kind domain.EnrichmentKind) {
			defer wg.Done()
			results[slot] = e.enrichOne(ctx, kind, input)
		}(i, kind)
	}
	wg.Wait()

	return results
}

func (e *Enricher) enrichOne(ctx context.Context, kind domain.EnrichmentKind, input domain.ListingInput) domain.EnrichmentResult {
	req := &genai.CompletionRequest{
		Model: e.model,
		Messages: []genai.Message{
			{Role: genai.RoleSystem, Content: systemPromptFor(kind)},
			{Role: genai.RoleUser, Content: userPromptFor(kind, input)},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}

	text, err := e.gen.Generate(ctx, req)
	if err != nil {
		e.logger.Warn("enrichment degraded to fallback",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return domain.EnrichmentResult{Kind: kind, Text: domain.EnrichmentFallbackText}
	}

	return domain.EnrichmentResult{Kind: kind, Text: text}
}

func systemPromptFor(kind domain.EnrichmentKind) string {
	switch kind {
	case domain.EnrichmentPropertyFacts:
		return "You are a real-estate research assistant. List notable factual selling points for the property. Short bullet points, no marketing language."
	case domain.EnrichmentNeighborhoodInfo:
		return "You are a real-estate research assistant. Summarize neighborhood amenities near the address: schools, parks, transit, shopping. Short bullet points."
	case domain.EnrichmentComparableInsights:
		return "You are a real-estate research assistant. Describe phrasing patterns that perform well in listings for comparable homes in this area. Short bullet points."
	default:
		return "You are a real-estate research assistant."
	}
}

func userPromptFor(kind domain.EnrichmentKind, input domain.ListingInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Address: %s\n", input.Address)
	if input.Beds != "" {
		fmt.Fprintf(&b, "Beds: %s\n", input.Beds)
	}
	if input.Baths != "" {
		fmt.Fprintf(&b, "Baths: %s\n", input.Baths)
	}
	if input.Sqft != "" {
		fmt.Fprintf(&b, "Square footage: %s\n", input.Sqft)
	}
	if input.PriceText != "" {
		fmt.Fprintf(&b, "Price: %s\n", input.PriceText)
	}
	fmt.Fprintf(&b, "\nProvide %s for this property.", readableKind(kind))
	return b.String()
}

func readableKind(kind domain.EnrichmentKind) string {
	switch kind {
	case domain.EnrichmentPropertyFacts:
		return "notable property facts"
	case domain.EnrichmentNeighborhoodInfo:
		return "neighborhood information"
	case domain.EnrichmentComparableInsights:
		return "comparable-listing insights"
	default:
		return string(kind)
	}
}
