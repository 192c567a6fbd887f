package llm

import (
	"strings"
)

// Sanitize strips markdown code fences from generator output and, when JSON
// is expected, trims the content to the outermost bracket pair so stray
// prose before or after the structure does not break parsing.
func Sanitize(content string, expectJSON bool) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)

	if !expectJSON {
		return content
	}

	first := strings.IndexAny(content, "[{")
	if first != -1 {
		content = content[first:]
	}

	last := max(strings.LastIndex(content, "]"), strings.LastIndex(content, "}"))
	if last != -1 {
		content = content[:last+1]
	}

	return strings.TrimSpace(content)
}
