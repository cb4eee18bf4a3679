// Package generator turns a pasted code snippet (plus optional repository
// context) into SEO metadata: a title, a meta description, a prose
// explanation, a standalone HTML rendering, and schema.org JSON-LD.
//
// Two modes exist with deliberately different failure behavior:
//
//   - Generate never fails. Any problem on the Claude path — missing
//     credential, transport error, empty completion, unparseable output —
//     degrades to a deterministic template-based result.
//
//   - GenerateStrict surfaces every failure as a typed error so the HTTP
//     layer can relay the upstream status verbatim.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/snipseo/snipseo/internal/model"
)

const (
	strictMaxTokens     = 2000
	contextualMaxTokens = 4000
	claudeTemperature   = 0.1
)

// ErrMissingAPIKey is returned by GenerateStrict when the service was
// constructed without a Claude credential.
var ErrMissingAPIKey = errors.New("generator: missing Claude API key")

// NonJSONError is returned by GenerateStrict when the model replied with
// text that does not parse as a JSON object. Raw carries the reply for
// logging; it is never echoed to clients.
type NonJSONError struct {
	Raw string
	Err error
}

func (e *NonJSONError) Error() string {
	return fmt.Sprintf("generator: completion is not valid JSON: %v", e.Err)
}

func (e *NonJSONError) Unwrap() error { return e.Err }

// Service orchestrates prompt building, the Claude call, output parsing,
// and the template fallback.
type Service struct {
	completer Completer // nil when no API key is configured
	logger    *slog.Logger
}

// NewService builds the generation service. Pass a nil completer when no
// Claude credential is configured: Generate then always falls back, and
// GenerateStrict returns ErrMissingAPIKey.
func NewService(completer Completer, logger *slog.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Generate produces metadata for the snippet, using repository context when
// available. It never returns an error: every failure mode falls back to
// the deterministic template result.
func (s *Service) Generate(ctx context.Context, code, language string, rc *model.RepoContext) *model.GenerationResult {
	if s.completer == nil {
		s.logger.Warn("claude not configured, using fallback generation")
		return fallbackResult(code, language, rc)
	}

	text, err := s.completer.Complete(ctx, CompletionRequest{
		Prompt:      buildContextualPrompt(code, language, rc),
		MaxTokens:   contextualMaxTokens,
		Temperature: claudeTemperature,
	})
	if err != nil {
		s.logger.Error("claude completion failed, using fallback", "error", err)
		return fallbackResult(code, language, rc)
	}

	result, err := parseResult(extractJSONObject(text))
	if err != nil {
		s.logger.Error("claude returned unparseable output, using fallback", "error", err)
		return fallbackResult(code, language, rc)
	}
	return result
}

// GenerateStrict produces metadata without any fallback. Callers must
// handle ErrMissingAPIKey, UpstreamError, ErrEmptyCompletion, and
// NonJSONError.
func (s *Service) GenerateStrict(ctx context.Context, code, language string) (*model.GenerationResult, error) {
	if s.completer == nil {
		return nil, ErrMissingAPIKey
	}

	text, err := s.completer.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      buildUserPrompt(code, language),
		MaxTokens:   strictMaxTokens,
		Temperature: claudeTemperature,
	})
	if err != nil {
		return nil, err
	}

	// Strict mode demands the whole reply be the JSON object; there is no
	// brace scanning here.
	result, err := parseResult(text)
	if err != nil {
		return nil, &NonJSONError{Raw: text, Err: err}
	}
	return result, nil
}

// extractJSONObject returns the span from the first '{' to the last '}' in
// text, or "" when no such span exists. Models routinely wrap JSON in prose
// or markdown fences; the outermost brace pair recovers the object.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

func parseResult(text string) (*model.GenerationResult, error) {
	if text == "" {
		return nil, errors.New("no JSON object in completion")
	}
	var result model.GenerationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
