// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/snipseo/snipseo/internal/analytics"
	"github.com/snipseo/snipseo/internal/auth"
	"github.com/snipseo/snipseo/internal/generator"
	"github.com/snipseo/snipseo/internal/github"
	"github.com/snipseo/snipseo/internal/model"
)

// GenerateHandler serves the two metadata-generation endpoints.
//
// TWO ENDPOINTS, TWO CONTRACTS:
//
//	POST /api/generate               strict: upstream failures surface as errors
//	POST /api/generate-with-context  resilient: always 200, falls back on failure
//
// The strict endpoint keeps the legacy {"error": "..."} response shape so
// existing clients keep parsing failures the same way.
type GenerateHandler struct {
	generator *generator.Service
	github    *github.Client
	analytics *analytics.Tracker
	logger    *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(gen *generator.Service, gh *github.Client, tracker *analytics.Tracker, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: gen,
		github:    gh,
		analytics: tracker,
		logger:    logger,
	}
}

// GenerateRequest is the body of both generation endpoints. GitHubURL is
// only honoured by the contextual endpoint.
type GenerateRequest struct {
	Code      string `json:"code"`
	Language  string `json:"language"`
	GitHubURL string `json:"githubUrl"`
}

// HandleGenerate handles POST /api/generate — the strict path.
//
// Failure contract (shape matches what the frontend already parses):
//
//	400 {"error": "Code is required"}           bad body / missing code
//	500 {"error": "Server missing CLAUDE_KEY"}  no credential configured
//	N   {"error": "Claude API error N"}         upstream status passed through
//	502 {"error": "..."}                        empty or non-JSON reply
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Code is required"})
		return
	}

	result, err := h.generator.GenerateStrict(r.Context(), req.Code, req.Language)
	if err != nil {
		h.writeGenerateError(w, err)
		return
	}

	h.analytics.Capture(auth.UserIDOrAnonymous(r.Context()), "snippet_generated", map[string]any{
		"language":    req.Language,
		"has_context": false,
	})

	writeJSON(w, http.StatusOK, result)
}

// HandleGenerateWithContext handles POST /api/generate-with-context.
//
// Requires a session. When a GitHub URL is supplied, repository context is
// fetched best-effort and folded into the prompt. This path never fails on
// the Claude side: any upstream problem degrades to template output, so
// the response is always 200 once the body validates.
func (h *GenerateHandler) HandleGenerateWithContext(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Code is required"})
		return
	}

	var repoCtx *model.RepoContext
	if req.GitHubURL != "" {
		repoCtx = h.github.FetchRepoContext(r.Context(), req.GitHubURL)
	}

	result := h.generator.Generate(r.Context(), req.Code, req.Language, repoCtx)

	h.analytics.Capture(auth.UserIDOrAnonymous(r.Context()), "snippet_generated", map[string]any{
		"language":    req.Language,
		"has_context": repoCtx != nil,
	})

	writeJSON(w, http.StatusOK, result)
}

// writeGenerateError maps strict-path generation errors to the legacy
// response shape.
func (h *GenerateHandler) writeGenerateError(w http.ResponseWriter, err error) {
	var upstream *generator.UpstreamError
	var nonJSON *generator.NonJSONError

	switch {
	case errors.Is(err, generator.ErrMissingAPIKey):
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Server missing CLAUDE_KEY"})
	case errors.As(err, &upstream):
		writeJSON(w, upstream.StatusCode, map[string]any{
			"error": fmt.Sprintf("Claude API error %d", upstream.StatusCode),
		})
	case errors.Is(err, generator.ErrEmptyCompletion):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "Empty response from Claude"})
	case errors.As(err, &nonJSON):
		h.logger.Error("claude returned non-JSON", slog.String("raw", nonJSON.Raw))
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "Claude returned non-JSON"})
	default:
		h.logger.Error("generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "Claude request failed"})
	}
}
