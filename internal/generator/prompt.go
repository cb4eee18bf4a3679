// Package generator produces SEO content for code snippets.
//
// It has two halves: a Claude-backed path (prompt construction + completion
// + JSON extraction) and a deterministic template fallback. The contextual
// entry point never fails — every error on the Claude path resolves to the
// fallback so a flaky model or missing repository context can't block a
// user-facing generation request.
package generator

import (
	"fmt"
	"strings"

	"github.com/snipseo/snipseo/internal/model"
)

// Excerpt bounds applied when embedding repository context into the prompt.
// Tighter than the fetch-time bounds: the prompt only needs a taste of the
// README, not two thousand characters of it.
const (
	promptReadmeChars      = 500
	promptPackageJSONChars = 300
)

// systemPrompt instructs the model on the exact JSON shape for the plain
// (context-free) generation path. Anthropic's messages API has no strict
// structured-output mode, so the contract lives in the instruction text and
// the response is validated on the way back.
const systemPrompt = `You are an expert at creating SEO-optimized content for code snippets.

Given a code snippet, you must:
1. Generate an SEO-friendly title that includes the programming language and main functionality
2. Create a meta description under 160 characters that's compelling for search results
3. Write a clear explanation paragraph that helps developers understand the code
4. Generate proper JSON-LD structured data for the code snippet

Return STRICT JSON only matching this shape:
{
  "title": string,
  "description": string,
  "explanation": string,
  "html_output": string,
  "schema_markup": object
}

The html_output should include the code with syntax highlighting and the explanation.
The schema_markup should be valid JSON-LD structured data for a code snippet.`

// buildUserPrompt is the instruction for the plain generation path.
func buildUserPrompt(code, language string) string {
	return fmt.Sprintf(`Code snippet to optimize (language: %s):

`+"```%s\n%s\n```"+`

Generate SEO-optimized content with:
- Title: Include the language and what the code does (e.g., "React useEffect Hook Example for API Data Fetching")
- Description: Compelling meta description under 160 chars
- Explanation: 1-2 paragraph explanation of what the code does and how to use it
- HTML: Full HTML with syntax-highlighted code and explanation
- Schema: JSON-LD structured data for the code snippet

Return only JSON matching the required format.`,
		orDefault(language, "auto-detect"), language, code)
}

// buildContextualPrompt is the instruction for the context-aware path. When
// repository context is present it is embedded (further truncated), and the
// requested JSON-LD author/codeRepository fields are conditioned on it:
// repository-backed snippets get an Organization author named after the
// owner, free-floating ones a generic Person.
func buildContextualPrompt(code, language string, rc *model.RepoContext) string {
	contextInfo := ""
	if rc != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "\n\nREPOSITORY CONTEXT:\n")
		fmt.Fprintf(&b, "- Project: %s\n", rc.Name)
		fmt.Fprintf(&b, "- Description: %s\n", rc.Description)
		fmt.Fprintf(&b, "- Language: %s\n", rc.Language)
		fmt.Fprintf(&b, "- Stars: %d\n", rc.Stars)
		fmt.Fprintf(&b, "- Topics: %s\n", strings.Join(rc.Topics, ", "))
		fmt.Fprintf(&b, "- Owner: %s\n", rc.Owner)
		fmt.Fprintf(&b, "- README excerpt: %s", truncate(rc.Readme, promptReadmeChars))
		if rc.PackageJSON != "" {
			fmt.Fprintf(&b, "\n- Package.json: %s", truncate(rc.PackageJSON, promptPackageJSONChars))
		}
		contextInfo = b.String()
	}

	contextClaim := "no additional context"
	contextTask := "Analyzes the code to determine its likely purpose and usage patterns"
	codeRepository := "null"
	if rc != nil {
		contextClaim = "full repository context"
		contextTask = "Uses repository context to provide better understanding of the code's purpose and usage"
		codeRepository = fmt.Sprintf("%q", "https://github.com/"+rc.FullName)
	}

	return fmt.Sprintf(`You are an expert technical writer and SEO specialist. Create SEO-optimized content for this code snippet with %s.

CODE SNIPPET:
`+"```%s\n%s\n```"+`
%s

Generate comprehensive SEO content that:
1. Focuses on the specific code snippet provided
2. %s
3. Targets developer search queries
4. Includes practical examples and use cases
5. Creates content that developers would actually find helpful

Return a JSON response with this exact structure:
{
  "title": "SEO-optimized title (focus on what the code does, include framework/library names if relevant)",
  "description": "Meta description for search results (150-160 chars, developer-focused)",
  "explanation": "Detailed explanation of what the code does, how it works, and when to use it. Include context about the project if available. Make it educational and helpful for developers.",
  "html_output": "Complete HTML page with proper structure, the code snippet, explanation, and usage examples. Include proper heading hierarchy and semantic markup.",
  "schema_markup": {
    "@context": "https://schema.org",
    "@type": "TechArticle",
    "name": "Article title",
    "description": "Article description",
    "programmingLanguage": %q,
    "codeRepository": %s,
    "author": {
      "@type": %q,
      "name": %q
    }
  }
}`,
		contextClaim,
		orDefault(language, "auto"), code,
		contextInfo,
		contextTask,
		orDefault(language, "Unknown"),
		codeRepository,
		authorType(rc),
		authorName(rc),
	)
}

// authorType implements the Organization/Person rule shared by the prompt
// builder and the fallback generator.
func authorType(rc *model.RepoContext) string {
	if rc != nil {
		return "Organization"
	}
	return "Person"
}

func authorName(rc *model.RepoContext) string {
	if rc != nil {
		return rc.Owner
	}
	return "Developer"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
