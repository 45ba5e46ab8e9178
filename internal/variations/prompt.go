package variations

import (
	"fmt"
	"strings"

	"github.com/brightlisting/rewriter/internal/domain"
	"github.com/brightlisting/rewriter/internal/genai"
)

const systemPrompt = "You are an expert real-estate copywriter. Rewrite the provided listing description in the requested tone, following every rule exactly. Respond with the description text only."

// buildMessages assembles the full instruction list for one tone: listing
// facts, the original description, all three enrichment notes, the
// few-shot examples, then the tone rules and shared hard rules.
func buildMessages(spec Spec, lctx *domain.ListingContext, includeComparables bool) []genai.Message {
	in := lctx.Input

	var b strings.Builder
	b.WriteString("Listing details:\n")
	fmt.Fprintf(&b, "Address: %s\n", in.Address)
	if in.Beds != "" {
		fmt.Fprintf(&b, "Beds: %s\n", in.Beds)
	}
	if in.Baths != "" {
		fmt.Fprintf(&b, "Baths: %s\n", in.Baths)
	}
	if in.Sqft != "" {
		fmt.Fprintf(&b, "Square footage: %s\n", in.Sqft)
	}
	if in.PriceText != "" {
		fmt.Fprintf(&b, "Price: %s\n", in.PriceText)
	}

	fmt.Fprintf(&b, "\nOriginal description:\n%s\n", in.Description)

	b.WriteString("\nResearch notes:\n")
	fmt.Fprintf(&b, "Property facts:\n%s\n\n", lctx.Enrichment(domain.EnrichmentPropertyFacts).Text)
	fmt.Fprintf(&b, "Neighborhood:\n%s\n\n", lctx.Enrichment(domain.EnrichmentNeighborhoodInfo).Text)
	if includeComparables {
		fmt.Fprintf(&b, "Comparable-listing insights:\n%s\n\n", lctx.Enrichment(domain.EnrichmentComparableInsights).Text)
	}

	b.WriteString("Example descriptions (style and length anchors only, do not copy):\n")
	for i, ex := range fewShotExamples {
		fmt.Fprintf(&b, "Example %d: %s\n\n", i+1, ex)
	}

	fmt.Fprintf(&b, "Tone: %s\n%s\n\n%s", spec.Tone, spec.StyleRules, bannedConstructions)

	return []genai.Message{
		{Role: genai.RoleSystem, Content: systemPrompt},
		{Role: genai.RoleUser, Content: b.String()},
	}
}
