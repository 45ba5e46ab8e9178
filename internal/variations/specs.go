// Package variations builds and dispatches the three tone-specific rewrite
// requests. Unlike enrichment, a single failed variation fails the whole
// stage: callers depend on all three tones being present.
package variations

import "github.com/brightlisting/rewriter/internal/domain"

// Spec pairs a tone with its fixed style rules. The table is static; tone
// customization happens in the UI layer, not here.
type Spec struct {
	Tone       domain.Tone
	StyleRules string
}

// Specs is the fixed variation table, in response order.
var Specs = []Spec{
	{
		Tone: domain.ToneProfessional,
		StyleRules: `Write in a polished, authoritative voice suited to a luxury brokerage.
Prefer precise, concrete language over superlatives. Address the reader as a serious buyer.
Close with a restrained call to action (private showing, detailed brochure).`,
	},
	{
		Tone: domain.ToneFun,
		StyleRules: `Write in a warm, playful voice with personality.
Light humor is welcome; keep it tasteful and never at the property's expense.
Close with an inviting, casual call to action.`,
	},
	{
		Tone: domain.ToneBalanced,
		StyleRules: `Write in an approachable but professional voice.
Blend factual confidence with warmth. Highlight lifestyle benefits alongside features.
Close with a friendly but direct call to action.`,
	},
}

// bannedConstructions is appended to every variation prompt. It anchors
// length and forbids the clichés the product exists to eliminate.
const bannedConstructions = `Hard rules for every description:
- Length must land between 400 and 900 characters.
- Never open with "Welcome to", "Welcome home", "Step inside", or "Nestled".
- Do not use exclamation points more than once, and never two in a row.
- No ALL-CAPS words. No emoji.
- Do not invent facts not present in the provided details or research notes.
- Do not copy the example descriptions; they anchor style and length only.`

// fewShotExamples anchor style and length for the model. They are fixed
// sample outputs, not templates to copy.
var fewShotExamples = []string{
	`This three-bedroom craftsman pairs original hardwood floors with a fully updated kitchen, quartz counters, and a walk-in pantry. The fenced backyard opens to a covered patio built for year-round entertaining, and the detached garage adds flexible studio space. Four blocks from the farmers market and zoned for sought-after Lincoln Elementary, it offers a rare mix of character and convenience. Schedule a private showing this week.`,
	`Morning light pours through the bay windows of this two-bedroom condo overlooking Harper Park. A reworked open floor plan connects the chef's kitchen to a dining area that comfortably seats eight, while the primary suite hides a surprisingly large walk-in closet. With secure parking, new HVAC, and the streetcar two minutes away, low-maintenance city living rarely looks this good. Come see it for yourself.`,
}
