package format

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// markerChars are stripped from sentence starts before scoring.
const markerChars = "#*•🔸📊🔍⚡💡_` \t"

// Highlights extracts up to max short sentences that mention a concrete
// figure, for the summary strip above each analysis panel. Returns nil
// when the text yields nothing usable.
func Highlights(content string, max int) []string {
	if max <= 0 || strings.TrimSpace(content) == "" {
		return nil
	}

	doc, err := prose.NewDocument(content)
	if err != nil {
		return nil
	}

	var highlights []string
	for _, sent := range doc.Sentences() {
		text := strings.TrimSpace(strings.TrimLeft(sent.Text, markerChars))
		if text == "" || len(text) > 200 {
			continue
		}
		if !strings.ContainsAny(text, "%$") && !strings.ContainsAny(text, "0123456789") {
			continue
		}
		highlights = append(highlights, text)
		if len(highlights) == max {
			break
		}
	}
	return highlights
}
