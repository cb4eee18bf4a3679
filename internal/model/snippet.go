// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Snippet represents a saved code snippet together with the SEO content that
// was generated for it. The `json:"..."` tags tell Go's encoding/json package
// how to serialize/deserialize this struct to/from JSON.
//
// The wire format uses snake_case (user_id, html_output, ...) because that is
// the contract shared by the frontend, the API responses, and the persisted rows.
//
// SchemaMarkup is a free-form JSON-LD object (a schema.org TechArticle). We
// keep it as map[string]any in memory and serialize it to a TEXT column in
// SQLite — snippets are never queried by their structured data, so an opaque
// blob is fine.
type Snippet struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Code         string         `json:"code"`
	Language     string         `json:"language,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Explanation  string         `json:"explanation"`
	HTMLOutput   string         `json:"html_output"`
	SchemaMarkup map[string]any `json:"schema_markup"`
	GitHubURL    string         `json:"github_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
