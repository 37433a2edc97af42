package format

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
)

var numberedItemRe = regexp.MustCompile(`^\d+\.\s`)

// ConvertToHTML renders reformatted markdown to HTML for the dashboard
// panels. The whole text is processed as one block so list structures
// survive.
func ConvertToHTML(content string) string {
	normalized := normalizeMarkdownLists(content)
	return string(markdown.ToHTML([]byte(normalized), nil, nil))
}

// normalizeMarkdownLists ensures list items have proper spacing for
// markdown parsing. Markdown requires a blank line before lists, but
// LLMs often forget this.
func normalizeMarkdownLists(text string) string {
	lines := strings.Split(text, "\n")
	var result []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if isListItem(strings.TrimSpace(line)) && i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && !isListItem(prev) {
				result = append(result, "")
			}
		}

		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

func isListItem(trimmed string) bool {
	return strings.HasPrefix(trimmed, "- ") ||
		strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "+ ") ||
		strings.HasPrefix(trimmed, "• ") ||
		numberedItemRe.MatchString(trimmed)
}
