package jobs

import (
	"regexp"
	"strings"
)

// maxTitleWords caps generated display names.
const maxTitleWords = 5

// titleLabelPattern matches a leading "Title:" / "Heading:" label.
var titleLabelPattern = regexp.MustCompile(`(?i)^(title|heading)\s*:\s*`)

// SanitizeTitle normalizes a model-generated title: first line only, quotes
// and markdown artifacts stripped, leading label removed, capped to
// maxTitleWords. Sanitizing an already-clean title returns it unchanged.
func SanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}

	title = strings.TrimLeft(title, "#")
	title = strings.Map(func(r rune) rune {
		switch r {
		case '*', '_', '`', '"', '\'', '“', '”', '‘', '’':
			return -1
		}
		return r
	}, title)
	title = titleLabelPattern.ReplaceAllString(strings.TrimSpace(title), "")

	words := strings.Fields(title)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	return strings.Join(words, " ")
}
