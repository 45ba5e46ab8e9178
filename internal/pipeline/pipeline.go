// Package pipeline sequences a rewrite run: validation, the credit gate,
// enrichment fan-out, variation fan-out, and the best-effort finalization
// side effects.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brightlisting/rewriter/internal/domain"
	"github.com/brightlisting/rewriter/internal/enrich"
	"github.com/brightlisting/rewriter/internal/notify"
	"github.com/brightlisting/rewriter/internal/storage"
	"github.com/brightlisting/rewriter/internal/variations"
)

// sideEffectTimeout bounds the detached finalization work (webhooks,
// record write) after the response is already decided.
const sideEffectTimeout = 30 * time.Second

// Pipeline is the single entry point the HTTP layer calls.
type Pipeline struct {
	enricher *enrich.Enricher
	vargen   *variations.Generator
	ledger   storage.CreditLedger
	records  storage.RecordStore
	notifier *notify.Notifier
	logger   *slog.Logger

	// syncSideEffects makes finalization synchronous, for tests.
	syncSideEffects bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLedger enables the credit gate for authenticated requests.
func WithLedger(ledger storage.CreditLedger) Option {
	return func(p *Pipeline) { p.ledger = ledger }
}

// WithRecordStore enables best-effort run record persistence.
func WithRecordStore(records storage.RecordStore) Option {
	return func(p *Pipeline) { p.records = records }
}

// WithNotifier enables the fire-and-forget notification webhooks.
func WithNotifier(notifier *notify.Notifier) Option {
	return func(p *Pipeline) { p.notifier = notifier }
}

// WithSynchronousSideEffects runs finalization inline instead of on a
// detached goroutine. Tests use this to observe side effects
// deterministically.
func WithSynchronousSideEffects() Option {
	return func(p *Pipeline) { p.syncSideEffects = true }
}

// New creates a Pipeline.
func New(enricher *enrich.Enricher, vargen *variations.Generator, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		enricher: enricher,
		vargen:   vargen,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one rewrite request. On success the outcome carries exactly
// three variations; on failure the returned *domain.PipelineError carries
// a category and message only. No partial variation set is ever returned.
func (p *Pipeline) Run(ctx context.Context, input domain.ListingInput) (*domain.PipelineOutcome, error) {
	start := time.Now()

	if err := validate(input); err != nil {
		return nil, err
	}

	// Credit precondition: strictly before any paid generation work.
	authenticated := input.UserID != "" && p.ledger != nil
	var remaining int64
	if authenticated {
		var err error
		remaining, err = p.ledger.CheckAndReserve(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrInsufficientCredits) {
				return nil, domain.ErrInsufficientCredits("at least one credit is required")
			}
			p.logger.Error("credit reservation failed", slog.String("error", err.Error()))
			return nil, domain.ErrServer("credit check failed")
		}
	}

	// Enrichment cannot fail the pipeline: every slot degrades to the
	// fallback text on its own.
	lctx := &domain.ListingContext{
		Input:       input,
		Enrichments: p.enricher.Enrich(ctx, input),
	}

	results, promptTokens, err := p.vargen.Generate(ctx, lctx)
	if err != nil {
		if authenticated {
			if rerr := p.ledger.Refund(ctx, input.UserID); rerr != nil {
				p.logger.Error("credit refund failed", slog.String("error", rerr.Error()))
			}
		}
		p.recordRun(input, "failed", string(domain.ErrorTypeGeneration), promptTokens, time.Since(start), nil)
		return nil, domain.ErrGeneration("could not generate all variations")
	}

	outcome := &domain.PipelineOutcome{
		Variations: make(map[domain.Tone]string, len(results)),
		CharCounts: make(map[domain.Tone]int, len(results)),
	}
	for _, r := range results {
		outcome.Variations[r.Tone] = r.Text
		outcome.CharCounts[r.Tone] = len([]rune(r.Text))
	}
	if authenticated {
		outcome.CreditsRemaining = &remaining
	}

	p.finalize(input, outcome, authenticated, promptTokens, time.Since(start))

	return outcome, nil
}

// finalize performs the post-success side effects: credit commit, run
// record, and the notification webhooks. None of them can revert the
// outcome; the content already exists.
func (p *Pipeline) finalize(input domain.ListingInput, outcome *domain.PipelineOutcome, authenticated bool, promptTokens int, elapsed time.Duration) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if authenticated {
			if err := p.ledger.Commit(ctx, input.UserID); err != nil {
				p.logger.Error("credit commit failed", slog.String("error", err.Error()))
			}
		}

		p.recordRun(input, "completed", "", promptTokens, elapsed, outcome.Variations)

		if p.notifier != nil {
			p.notifier.NotifyAll(ctx, input, outcome.Variations)
		}
	}

	if p.syncSideEffects {
		run()
		return
	}
	go run()
}

func (p *Pipeline) recordRun(input domain.ListingInput, status, errorType string, promptTokens int, elapsed time.Duration, vars map[domain.Tone]string) {
	if p.records == nil {
		return
	}

	rec := &storage.RewriteRecord{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		Address:      input.Address,
		Status:       status,
		ErrorType:    errorType,
		PromptTokens: promptTokens,
		DurationNS:   elapsed.Nanoseconds(),
	}
	if vars != nil {
		rec.Variations = make(map[string]string, len(vars))
		for tone, text := range vars {
			rec.Variations[string(tone)] = text
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := p.records.SaveRewrite(ctx, rec); err != nil {
		p.logger.Error("rewrite record write failed", slog.String("error", err.Error()))
	}
}

func validate(input domain.ListingInput) error {
	if input.Address == "" {
		return domain.ErrValidation("address is required").WithParam("address")
	}
	if input.Description == "" {
		return domain.ErrValidation("description is required").WithParam("description")
	}
	return nil
}
