package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brightlisting/rewriter/internal/domain"
	"github.com/brightlisting/rewriter/internal/enrich"
	"github.com/brightlisting/rewriter/internal/genai"
	"github.com/brightlisting/rewriter/internal/pipeline"
	"github.com/brightlisting/rewriter/internal/variations"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoGenerator answers variation prompts with their tone and everything
// else with a fixed note.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, req *genai.CompletionRequest) (string, error) {
	user := req.Messages[1].Content
	for _, tone := range domain.Tones {
		if strings.Contains(user, "Tone: "+string(tone)) {
			return string(tone) + " output", nil
		}
	}
	return "research note", nil
}

func newTestHandler() *RewriteHandler {
	logger := discardLogger()
	gen := echoGenerator{}
	p := pipeline.New(
		enrich.New(gen, "gpt-4o-mini", logger),
		variations.New(gen, "gpt-4o-mini", logger),
		logger,
		pipeline.WithSynchronousSideEffects(),
	)
	return NewRewriteHandler(p, logger)
}

func TestHandleRewriteSuccess(t *testing.T) {
	h := newTestHandler()

	body := `{"address":"123 Main St","description":"Nice house.","beds":"3","baths":"2"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/rewrite", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleRewrite(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var outcome domain.PipelineOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, tone := range domain.Tones {
		if outcome.Variations[tone] != string(tone)+" output" {
			t.Errorf("tone %s: got %q", tone, outcome.Variations[tone])
		}
	}
	if len(outcome.CharCounts) != 3 {
		t.Errorf("expected 3 char counts, got %d", len(outcome.CharCounts))
	}
}

func TestHandleRewriteValidationError(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/rewrite", strings.NewReader(`{"description":"Nice house."}`))
	rec := httptest.NewRecorder()

	h.HandleRewrite(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope struct {
		Error domain.PipelineError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Error.Type != domain.ErrorTypeValidation {
		t.Errorf("expected validation error, got %s", envelope.Error.Type)
	}
	if envelope.Error.Param != "address" {
		t.Errorf("expected address param, got %q", envelope.Error.Param)
	}
}

func TestHandleRewriteBadJSON(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/rewrite", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	h.HandleRewrite(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.HandleHealthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
