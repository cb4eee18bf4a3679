package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snipseo/snipseo/internal/analytics"
	"github.com/snipseo/snipseo/internal/apperror"
	"github.com/snipseo/snipseo/internal/auth"
	"github.com/snipseo/snipseo/internal/service"
)

// SnippetHandler manages the saved-snippet endpoints. All routes sit
// behind RequireAuth, so the user ID is always present in the context by
// the time these handlers run.
type SnippetHandler struct {
	snippets  *service.SnippetService
	analytics *analytics.Tracker
	logger    *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, tracker *analytics.Tracker, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{
		snippets:  snippets,
		analytics: tracker,
		logger:    logger,
	}
}

// createSnippetRequest mirrors the JSON the dashboard sends when saving a
// generated result.
type createSnippetRequest struct {
	Code         string         `json:"code"`
	Language     string         `json:"language"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Explanation  string         `json:"explanation"`
	HTMLOutput   string         `json:"html_output"`
	SchemaMarkup map[string]any `json:"schema_markup"`
	GitHubURL    string         `json:"github_url"`
}

// HandleList returns the authenticated user's snippets, newest first.
//
// HTTP: GET /api/snippets
// RESPONSE: {"snippets": [...]}  — [] when the user has none
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	snippets, err := h.snippets.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snippets": snippets})
}

// HandleCreate saves a snippet for the authenticated user.
//
// HTTP: POST /api/snippets
// RESPONSE: 201 {"snippet": {...}}, or 400 with every validation failure
// listed in details.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Create(r.Context(), userID, service.CreateSnippetInput{
		Code:         req.Code,
		Language:     req.Language,
		Title:        req.Title,
		Description:  req.Description,
		Explanation:  req.Explanation,
		HTMLOutput:   req.HTMLOutput,
		SchemaMarkup: req.SchemaMarkup,
		GitHubURL:    req.GitHubURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.analytics.Capture(userID, "snippet_saved", map[string]any{
		"language":   snippet.Language,
		"has_github": snippet.GitHubURL != "",
	})

	writeJSON(w, http.StatusCreated, map[string]any{"snippet": snippet})
}

// HandleGet returns a single snippet owned by the authenticated user.
//
// HTTP: GET /api/snippets/{id}
// RESPONSE: 200 {"snippet": {...}}, or 404 "Snippet not found" for missing
// and not-owned alike.
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	snippet, err := h.snippets.GetByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snippet": snippet})
}

// HandleDelete removes one of the authenticated user's snippets.
//
// HTTP: DELETE /api/snippets/{id}
// RESPONSE: 200 {"success": true}, or 404 "Snippet not found" — including
// when the snippet exists but belongs to someone else.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.snippets.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	h.analytics.Capture(userID, "snippet_deleted", nil)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
