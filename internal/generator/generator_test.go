package generator

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipseo/snipseo/internal/model"
)

// fakeCompleter scripts the Claude response for a test.
type fakeCompleter struct {
	text string
	err  error

	// lastRequest records what the service asked for, so prompt and
	// parameter assertions can inspect it.
	lastRequest CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.lastRequest = req
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRepoContext() *model.RepoContext {
	return &model.RepoContext{
		Name:        "cachekit",
		FullName:    "acme/cachekit",
		Owner:       "acme",
		Description: "An in-process caching toolkit",
		Language:    "Go",
		Stars:       412,
	}
}

const validCompletion = `{
	"title": "LRU Cache in Go",
	"description": "A minimal LRU cache implementation.",
	"explanation": "The snippet evicts the least recently used entry.",
	"html_output": "<html><body>LRU</body></html>",
	"schema_markup": {"@type": "TechArticle"}
}`

func TestGenerateParsesModelOutput(t *testing.T) {
	fake := &fakeCompleter{text: validCompletion}
	svc := NewService(fake, testLogger())

	result := svc.Generate(context.Background(), "lru code", "Go", nil)

	require.NotNil(t, result)
	assert.Equal(t, "LRU Cache in Go", result.Title)
	assert.Equal(t, "TechArticle", result.SchemaMarkup["@type"])
	assert.EqualValues(t, contextualMaxTokens, fake.lastRequest.MaxTokens)
	assert.Empty(t, fake.lastRequest.System, "contextual path uses a single user prompt")
}

func TestGenerateRecoversJSONWrappedInProse(t *testing.T) {
	fake := &fakeCompleter{text: "Sure! Here is the metadata:\n```json\n" + validCompletion + "\n```\nLet me know if you need changes."}
	svc := NewService(fake, testLogger())

	result := svc.Generate(context.Background(), "lru code", "Go", nil)

	assert.Equal(t, "LRU Cache in Go", result.Title)
}

// Generate must never fail: every Claude-path problem degrades to the
// deterministic fallback.
func TestGenerateNeverFails(t *testing.T) {
	tests := []struct {
		name      string
		completer Completer
	}{
		{"no api key", nil},
		{"upstream error", &fakeCompleter{err: &UpstreamError{StatusCode: 529}}},
		{"empty completion", &fakeCompleter{err: ErrEmptyCompletion}},
		{"no json object", &fakeCompleter{text: "I cannot produce metadata for that."}},
		{"malformed json", &fakeCompleter{text: `{"title": "oops`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.completer, testLogger())

			result := svc.Generate(context.Background(), "some code", "Python", testRepoContext())

			require.NotNil(t, result)
			assert.NotEmpty(t, result.Title)
			assert.NotEmpty(t, result.Description)
			assert.NotEmpty(t, result.Explanation)
			assert.NotEmpty(t, result.HTMLOutput)
			assert.NotEmpty(t, result.SchemaMarkup)
		})
	}
}

func TestGenerateFallbackInterpolatesContext(t *testing.T) {
	svc := NewService(nil, testLogger())

	result := svc.Generate(context.Background(), "def f(): pass", "Python", testRepoContext())

	assert.Equal(t, "cachekit Code Example - Python Implementation", result.Title)
	assert.Contains(t, result.Description, "Learn how to use this Python example from cachekit.")
	assert.Contains(t, result.Explanation, "412 stars on GitHub")
	assert.Contains(t, result.HTMLOutput, "https://github.com/acme/cachekit")
	assert.Contains(t, result.HTMLOutput, "def f(): pass")

	author, ok := result.SchemaMarkup["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Organization", author["@type"])
	assert.Equal(t, "acme", author["name"])
	assert.Equal(t, "https://github.com/acme/cachekit", result.SchemaMarkup["codeRepository"])
}

func TestGenerateFallbackWithoutContext(t *testing.T) {
	svc := NewService(nil, testLogger())

	result := svc.Generate(context.Background(), "SELECT 1", "", nil)

	assert.Equal(t, "Code Example - Implementation Guide", result.Title)
	assert.Contains(t, result.Description, "Understand this code snippet")

	author, ok := result.SchemaMarkup["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Person", author["@type"])
	assert.Equal(t, "Developer", author["name"])
	assert.Nil(t, result.SchemaMarkup["codeRepository"])
}

func TestGenerateStrictErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		svc := NewService(nil, testLogger())

		_, err := svc.GenerateStrict(context.Background(), "code", "Go")

		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("upstream status passes through", func(t *testing.T) {
		svc := NewService(&fakeCompleter{err: &UpstreamError{StatusCode: 429}}, testLogger())

		_, err := svc.GenerateStrict(context.Background(), "code", "Go")

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, 429, upstream.StatusCode)
	})

	t.Run("empty completion", func(t *testing.T) {
		svc := NewService(&fakeCompleter{err: ErrEmptyCompletion}, testLogger())

		_, err := svc.GenerateStrict(context.Background(), "code", "Go")

		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})

	t.Run("non-json reply", func(t *testing.T) {
		svc := NewService(&fakeCompleter{text: "not json"}, testLogger())

		_, err := svc.GenerateStrict(context.Background(), "code", "Go")

		var nonJSON *NonJSONError
		require.ErrorAs(t, err, &nonJSON)
		assert.Equal(t, "not json", nonJSON.Raw)
	})

	t.Run("strict does not brace-scan", func(t *testing.T) {
		svc := NewService(&fakeCompleter{text: "prefix " + validCompletion}, testLogger())

		_, err := svc.GenerateStrict(context.Background(), "code", "Go")

		var nonJSON *NonJSONError
		assert.ErrorAs(t, err, &nonJSON)
	})
}

func TestGenerateStrictUsesSystemPrompt(t *testing.T) {
	fake := &fakeCompleter{text: validCompletion}
	svc := NewService(fake, testLogger())

	result, err := svc.GenerateStrict(context.Background(), "code", "Go")

	require.NoError(t, err)
	assert.Equal(t, "LRU Cache in Go", result.Title)
	assert.Equal(t, systemPrompt, fake.lastRequest.System)
	assert.EqualValues(t, strictMaxTokens, fake.lastRequest.MaxTokens)
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"spans to last brace", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`},
		{"no object", "sorry, no", ""},
		{"only open brace", "{oops", ""},
		{"close before open", "} {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContextualPromptTruncatesRepoFiles(t *testing.T) {
	rc := testRepoContext()
	rc.Readme = strings.Repeat("r", 2000)
	rc.PackageJSON = strings.Repeat("p", 1000)

	prompt := buildContextualPrompt("code", "Go", rc)

	assert.Contains(t, prompt, strings.Repeat("r", promptReadmeChars))
	assert.NotContains(t, prompt, strings.Repeat("r", promptReadmeChars+1))
	assert.Contains(t, prompt, strings.Repeat("p", promptPackageJSONChars))
	assert.NotContains(t, prompt, strings.Repeat("p", promptPackageJSONChars+1))
}
