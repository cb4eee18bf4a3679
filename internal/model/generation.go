package model

// GenerationResult is the SEO content produced for a code snippet, either by
// the Claude API or by the deterministic fallback generator. It has no
// identity of its own — it only becomes a Snippet if the user saves it.
type GenerationResult struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Explanation  string         `json:"explanation"`
	HTMLOutput   string         `json:"html_output"`
	SchemaMarkup map[string]any `json:"schema_markup"`
}

// RepoContext is repository metadata fetched from the GitHub API to enrich
// prompt construction. It is built once per generation request when a
// repository URL is supplied and discarded after the prompt is built.
//
// Readme is truncated to 2000 characters and PackageJSON to 1000 at fetch
// time; the prompt builder truncates further before embedding them.
type RepoContext struct {
	Name        string   // repository name, e.g. "chi"
	Description string   // repository description ("" if unset)
	Language    string   // primary language reported by GitHub
	Stars       int      // stargazers_count
	Topics      []string // repository topics
	Readme      string   // README excerpt, at most 2000 chars
	PackageJSON string   // package.json text, at most 1000 chars ("" if absent)
	Owner       string   // owner login
	FullName    string   // "owner/name"
}
