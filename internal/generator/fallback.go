package generator

import (
	"fmt"
	"strings"

	"github.com/snipseo/snipseo/internal/model"
)

// fallbackResult builds a deterministic GenerationResult from templates. It
// is the safety net for every failure on the Claude path: no credential,
// transport error, non-success status, empty response, or unparseable JSON.
//
// The output quality is obviously below model-generated content, but it is
// always non-empty, always well-formed, and interpolates whatever repository
// context is available — which is the product requirement: a flaky model
// must never block generation.
func fallbackResult(code, language string, rc *model.RepoContext) *model.GenerationResult {
	var title, description, explanation string

	if rc != nil {
		title = fmt.Sprintf("%s Code Example - %s Implementation",
			rc.Name, orDefault(language, "Programming"))
		description = fmt.Sprintf("Learn how to use this %s example from %s. %s",
			orDefault(language, "code"), rc.Name, truncate(rc.Description, 80))
		explanation = fmt.Sprintf(
			"This code snippet is from %s, %s. The code demonstrates %s functionality within the context of this %s project with %d stars on GitHub.",
			rc.Name, rc.Description, orDefault(language, "programming"), rc.Language, rc.Stars)
	} else {
		title = fmt.Sprintf("%s Example - Implementation Guide", orDefault(language, "Code"))
		description = fmt.Sprintf("Understand this %s snippet with detailed explanation and usage examples.",
			orDefault(language, "code"))
		explanation = fmt.Sprintf(
			"This %s snippet demonstrates programming functionality. The code can be used as a reference for similar implementations in your projects.",
			orDefault(language, "code"))
	}

	return &model.GenerationResult{
		Title:        title,
		Description:  description,
		Explanation:  explanation,
		HTMLOutput:   fallbackHTML(title, description, explanation, code, language, rc),
		SchemaMarkup: fallbackSchema(title, description, language, rc),
	}
}

// fallbackHTML assembles a complete standalone HTML document: title, an
// optional repository link, the raw code block, the explanation, and (when
// context exists) a project-context section.
func fallbackHTML(title, description, explanation, code, language string, rc *model.RepoContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <title>%s</title>
    <meta name="description" content="%s">
</head>
<body>
    <article>
        <header>
            <h1>%s</h1>
`, title, description, title)

	if rc != nil {
		fmt.Fprintf(&b, `            <p>From: <a href="https://github.com/%s">%s</a></p>
`, rc.FullName, rc.Name)
	}

	fmt.Fprintf(&b, `        </header>

        <section>
            <h2>Code Example</h2>
            <pre><code class="language-%s">%s</code></pre>
        </section>

        <section>
            <h2>Explanation</h2>
            <p>%s</p>
        </section>
`, orDefault(language, "text"), code, explanation)

	if rc != nil {
		fmt.Fprintf(&b, `
        <section>
            <h2>Project Context</h2>
            <p><strong>Repository:</strong> %s</p>
            <p><strong>Description:</strong> %s</p>
            <p><strong>Language:</strong> %s</p>
            <p><strong>GitHub:</strong> <a href="https://github.com/%s">View Repository</a></p>
        </section>
`, rc.Name, rc.Description, rc.Language, rc.FullName)
	}

	b.WriteString(`    </article>
</body>
</html>`)

	return b.String()
}

// fallbackSchema builds the JSON-LD TechArticle skeleton. The author
// @type/name follows the same Organization/Person rule as the prompt
// builder: repository-backed content is attributed to the repo owner as an
// Organization, free-floating snippets to a generic Person.
func fallbackSchema(title, description, language string, rc *model.RepoContext) map[string]any {
	var codeRepository any
	if rc != nil {
		codeRepository = "https://github.com/" + rc.FullName
	}

	return map[string]any{
		"@context":            "https://schema.org",
		"@type":               "TechArticle",
		"name":                title,
		"description":         description,
		"programmingLanguage": orDefault(language, "Unknown"),
		"codeRepository":      codeRepository,
		"author": map[string]any{
			"@type": authorType(rc),
			"name":  authorName(rc),
		},
	}
}
