package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when CLAUDE_MODEL is not configured.
const DefaultModel = "claude-3-5-sonnet-latest"

// CompletionRequest is a single non-streaming completion call.
// Temperature is only forwarded when set (> 0).
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Completer sends a prompt to a language model and returns the raw response
// text. It exists as an interface so the service and handlers can be tested
// with a scripted fake instead of a live API.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrEmptyCompletion means the model answered successfully but with no text
// content. The strict endpoint maps this to 502.
var ErrEmptyCompletion = errors.New("generator: model returned empty response")

// UpstreamError is a non-success response from the completion API. The
// strict endpoint forwards the upstream status; the contextual path treats
// it like every other failure and falls back.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generator: Claude API error %d", e.StatusCode)
}

// Compile-time check that ClaudeClient satisfies Completer.
var _ Completer = (*ClaudeClient)(nil)

// ClaudeClient is the production Completer, backed by the official Anthropic
// SDK. One client is shared by both generation endpoints.
type ClaudeClient struct {
	client anthropic.Client
	model  string
}

// ClaudeOption configures a ClaudeClient.
type ClaudeOption func(*[]option.RequestOption)

// WithBaseURL points the client at an alternate API endpoint. Tests use it
// with an httptest.Server.
func WithBaseURL(u string) ClaudeOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(u))
	}
}

// NewClaudeClient creates a client for the given API key and model.
// model may be empty, in which case DefaultModel is used.
func NewClaudeClient(apiKey, model string, opts ...ClaudeOption) *ClaudeClient {
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(&reqOpts)
	}

	return &ClaudeClient{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}
}

// Complete sends one non-streaming message and returns the first text block
// of the response.
func (c *ClaudeClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: req.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", &UpstreamError{StatusCode: apierr.StatusCode}
		}
		return "", fmt.Errorf("generator: calling Claude API: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", ErrEmptyCompletion
}
