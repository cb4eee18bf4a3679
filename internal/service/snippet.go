// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services accept primitives and small input structs, never *http.Request,
// and return domain errors from the apperror package, never HTTP status
// codes. The handler layer translates both directions.
//
// DEPENDENCY INJECTION:
// Every service takes repository interfaces (not *sqlite.DB). Tests pass
// hand-written mocks; main wires the SQLite implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/snipseo/snipseo/internal/apperror"
	"github.com/snipseo/snipseo/internal/model"
	"github.com/snipseo/snipseo/internal/repository"
)

// Validation constants. Named so error messages and tests can reference
// them instead of repeating magic numbers.
const (
	MaxCodeLength      = 100000 // ~100KB of pasted code
	MaxTitleLength     = 200
	MaxGitHubURLLength = 500
)

// SnippetService handles business logic for saved snippets. Every
// operation is scoped to the owning user: a snippet belonging to someone
// else behaves exactly like one that does not exist.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

// NewSnippetService creates a new SnippetService.
func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// CreateSnippetInput carries everything needed to save a snippet. The
// metadata fields come from generation (model or fallback), so they are
// required: a saved snippet is always a complete, publishable unit.
type CreateSnippetInput struct {
	Code         string
	Language     string
	Title        string
	Description  string
	Explanation  string
	HTMLOutput   string
	SchemaMarkup map[string]any
	GitHubURL    string
}

// Create validates and saves a snippet for the given user.
//
// VALIDATION COLLECTS EVERYTHING:
// Unlike fail-fast validation, Create checks every required field and
// returns all failures at once, so a client fixing a form sees the whole
// list in a single round trip.
func (s *SnippetService) Create(ctx context.Context, userID string, input CreateSnippetInput) (*model.Snippet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	var details []string
	if strings.TrimSpace(input.Code) == "" {
		details = append(details, "Code is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		details = append(details, "Title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		details = append(details, "Description is required")
	}
	if strings.TrimSpace(input.Explanation) == "" {
		details = append(details, "Explanation is required")
	}
	if strings.TrimSpace(input.HTMLOutput) == "" {
		details = append(details, "HTML output is required")
	}
	if len(input.SchemaMarkup) == 0 {
		details = append(details, "Schema markup is required")
	}
	if len(input.Code) > MaxCodeLength {
		details = append(details, fmt.Sprintf("Code must be %d characters or less", MaxCodeLength))
	}
	if len(input.Title) > MaxTitleLength {
		details = append(details, fmt.Sprintf("Title must be %d characters or less", MaxTitleLength))
	}
	if len(input.GitHubURL) > MaxGitHubURLLength {
		details = append(details, fmt.Sprintf("GitHub URL must be %d characters or less", MaxGitHubURLLength))
	}
	if len(details) > 0 {
		return nil, apperror.ValidationFailedAll(details)
	}

	snippet := &model.Snippet{
		UserID:       userID,
		Code:         input.Code,
		Language:     strings.TrimSpace(input.Language),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Explanation:  input.Explanation,
		HTMLOutput:   input.HTMLOutput,
		SchemaMarkup: input.SchemaMarkup,
		GitHubURL:    strings.TrimSpace(input.GitHubURL),
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("user_id", userID),
	)

	return snippet, nil
}

// ListByUser returns the user's snippets, newest first. An empty result is
// a non-nil empty slice so it serialises as [] rather than null.
func (s *SnippetService) ListByUser(ctx context.Context, userID string) ([]model.Snippet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	snippets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list snippets",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// GetByID returns one of the user's snippets. Someone else's snippet
// reports NotFound, same as a missing one.
func (s *SnippetService) GetByID(ctx context.Context, userID, snippetID string) (*model.Snippet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil, apperror.ValidationFailed("id", "Snippet ID is required")
	}

	return s.repo.GetForUser(ctx, snippetID, userID)
}

// Delete removes the snippet if it belongs to the user. A snippet owned by
// someone else returns NotFound, never a permission error, so the API does
// not leak which IDs exist.
func (s *SnippetService) Delete(ctx context.Context, userID, snippetID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.Unauthorized("authentication required")
	}

	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return apperror.ValidationFailed("id", "Snippet ID is required")
	}

	if err := s.repo.DeleteForUser(ctx, snippetID, userID); err != nil {
		return err
	}

	s.logger.Info("snippet deleted",
		slog.String("id", snippetID),
		slog.String("user_id", userID),
	)
	return nil
}
