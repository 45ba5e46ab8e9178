package domain

// EnrichmentKind identifies one of the fixed enrichment categories.
type EnrichmentKind string

const (
	EnrichmentPropertyFacts      EnrichmentKind = "property_facts"
	EnrichmentNeighborhoodInfo   EnrichmentKind = "neighborhood_info"
	EnrichmentComparableInsights EnrichmentKind = "comparable_insights"
)

// EnrichmentKinds is the fixed tag order used everywhere enrichments are
// assembled or rendered. Aggregation re-associates results by kind, so the
// output order never depends on completion order.
var EnrichmentKinds = []EnrichmentKind{
	EnrichmentPropertyFacts,
	EnrichmentNeighborhoodInfo,
	EnrichmentComparableInsights,
}

// EnrichmentFallbackText replaces an enrichment whose retries were
// exhausted. The slot is always populated; downstream prompt construction
// relies on that.
const EnrichmentFallbackText = "No data available"

// EnrichmentResult is one enrichment slot. Text is never empty: it holds
// either generated content or EnrichmentFallbackText.
type EnrichmentResult struct {
	Kind EnrichmentKind `json:"kind"`
	Text string         `json:"text"`
}

// Tone identifies one of the fixed stylistic variations.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFun          Tone = "fun"
	ToneBalanced     Tone = "balanced"
)

// Tones is the fixed tone order for variation dispatch and response
// assembly.
var Tones = []Tone{ToneProfessional, ToneFun, ToneBalanced}

// VariationResult is one generated rewrite keyed by tone.
type VariationResult struct {
	Tone Tone   `json:"tone"`
	Text string `json:"text"`
}

// ListingInput is the caller-supplied subject of a rewrite request.
// Address and Description are required; the rest are optional facts.
type ListingInput struct {
	Address     string `json:"address"`
	Description string `json:"description"`
	PriceText   string `json:"price,omitempty"`
	Beds        string `json:"beds,omitempty"`
	Baths       string `json:"baths,omitempty"`
	Sqft        string `json:"sqft,omitempty"`

	// UserID is the opaque credit-ledger key. Empty means anonymous: the
	// credit gate is skipped and no balance is returned.
	UserID string `json:"user_id,omitempty"`

	// Email, when present, is forwarded to the notification webhooks.
	Email string `json:"email,omitempty"`
}

// ListingContext is the read-only input to variation prompt construction:
// the original listing plus all three enrichment slots.
type ListingContext struct {
	Input       ListingInput
	Enrichments []EnrichmentResult
}

// Enrichment returns the slot for the given kind, falling back to the
// placeholder when the slot is missing.
func (c *ListingContext) Enrichment(kind EnrichmentKind) EnrichmentResult {
	for _, e := range c.Enrichments {
		if e.Kind == kind {
			return e
		}
	}
	return EnrichmentResult{Kind: kind, Text: EnrichmentFallbackText}
}

// PipelineOutcome is the terminal artifact of a successful run. It is
// never partially populated: all three tones are present or the pipeline
// returned an error instead.
type PipelineOutcome struct {
	Variations       map[Tone]string `json:"variations"`
	CharCounts       map[Tone]int    `json:"char_counts"`
	CreditsRemaining *int64          `json:"credits_remaining,omitempty"`
}
