// Package github fetches repository context from the GitHub REST API to
// enrich prompt construction.
//
// Everything in this package is best-effort by design: a bad URL, a missing
// repository, a rate-limited API, or a garbled README must never fail a
// generation request. The worst case is always "no context", and generation
// proceeds without it.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/snipseo/snipseo/internal/model"
)

const (
	defaultBaseURL = "https://api.github.com"

	// Excerpt bounds applied at fetch time. The prompt builder truncates
	// further before embedding these into the instruction text.
	maxReadmeChars      = 2000
	maxPackageJSONChars = 1000
)

// Client talks to the GitHub REST API.
//
// The token is optional — without it requests are anonymous and subject to
// GitHub's much lower unauthenticated rate limit, which is fine for light
// use and degrades to "no context" either way.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the GitHub API base URL. Tests point this at an
// httptest.Server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// New creates a GitHub client. token may be empty.
func New(token string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// repoResponse is the slice of the /repos/{owner}/{repo} payload we use.
type repoResponse struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Topics      []string `json:"topics"`
}

// contentResponse is the shape of both the /readme and /contents/{path}
// endpoints: base64-encoded file content.
type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchRepoContext retrieves repository metadata, a README excerpt, and the
// package.json manifest for a GitHub repository URL.
//
// Returns nil — never an error — when the context can't be built:
//   - the URL doesn't look like https://github.com/<owner>/<repo>
//   - the repository metadata request fails or returns a non-success status
//
// The README and package.json sub-fetches are individually best-effort: a
// failure in either simply leaves that field empty while the rest of the
// context is returned.
func (c *Client) FetchRepoContext(ctx context.Context, repoURL string) *model.RepoContext {
	owner, name, ok := parseRepoURL(repoURL)
	if !ok {
		c.logger.Debug("github: unparseable repository URL", slog.String("url", repoURL))
		return nil
	}

	var repo repoResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, name), &repo); err != nil {
		c.logger.Warn("github: repository metadata fetch failed",
			slog.String("repo", owner+"/"+name),
			slog.String("error", err.Error()),
		)
		return nil
	}

	readme := c.fetchFileContent(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, name))
	packageJSON := c.fetchFileContent(ctx, fmt.Sprintf("/repos/%s/%s/contents/package.json", owner, name))

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	fullName := repo.FullName
	if fullName == "" {
		fullName = owner + "/" + name
	}

	return &model.RepoContext{
		Name:        repo.Name,
		Description: repo.Description,
		Language:    repo.Language,
		Stars:       repo.Stars,
		Topics:      topics,
		Readme:      truncate(readme, maxReadmeChars),
		PackageJSON: truncate(packageJSON, maxPackageJSONChars),
		Owner:       owner,
		FullName:    fullName,
	}
}

// parseRepoURL extracts owner and repo from a GitHub URL. Extra path
// segments (tree/main, blob/...) are ignored; fewer than two segments is a
// soft failure.
func parseRepoURL(repoURL string) (owner, name string, ok bool) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", false
	}

	parts := []string{}
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", false
	}

	return parts[0], parts[1], true
}

// fetchFileContent retrieves a base64-encoded file from a GitHub content
// endpoint. Any failure — transport, status, encoding — yields "".
func (c *Client) fetchFileContent(ctx context.Context, path string) string {
	var content contentResponse
	if err := c.getJSON(ctx, path, &content); err != nil {
		c.logger.Debug("github: content fetch failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return ""
	}

	if content.Encoding != "base64" || content.Content == "" {
		return ""
	}

	// GitHub wraps base64 content in newlines every 60 chars.
	raw := strings.ReplaceAll(content.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		c.logger.Debug("github: undecodable base64 content", slog.String("path", path))
		return ""
	}

	return string(decoded)
}

// getJSON performs an authenticated GET against the GitHub API and decodes
// the JSON response. Non-2xx statuses are errors.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "snipseo")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
