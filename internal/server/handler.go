package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brightlisting/rewriter/internal/domain"
	"github.com/brightlisting/rewriter/internal/pipeline"
)

// RewriteHandler exposes the pipeline as the caller-facing JSON endpoint.
type RewriteHandler struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// NewRewriteHandler creates the handler.
func NewRewriteHandler(p *pipeline.Pipeline, logger *slog.Logger) *RewriteHandler {
	return &RewriteHandler{pipeline: p, logger: logger}
}

// HandleRewrite handles POST /v1/rewrite. The response is either a
// complete outcome with all three variations or an error envelope; a
// partial variation set is never emitted.
func (h *RewriteHandler) HandleRewrite(w http.ResponseWriter, r *http.Request) {
	var input domain.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	AddLogField(r.Context(), "address", input.Address)

	outcome, err := h.pipeline.Run(r.Context(), input)
	if err != nil {
		AddError(r.Context(), err)
		var perr *domain.PipelineError
		if errors.As(err, &perr) {
			writeError(w, perr)
			return
		}
		writeError(w, domain.ErrServer("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// HandleHealthz handles GET /healthz.
func (h *RewriteHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, perr *domain.PipelineError) {
	writeJSON(w, perr.HTTPStatusCode(), map[string]any{"error": perr})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already written; nothing left to do.
		return
	}
}
