package subtitle

import (
	"regexp"
	"strings"
)

// timeRangePattern matches SRT/VTT style cue timing lines.
var timeRangePattern = regexp.MustCompile(`\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}\s+-->\s+\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}`)

// indexLinePattern matches bare numeric cue indices.
var indexLinePattern = regexp.MustCompile(`^\d+$`)

// Looks reports whether text appears to be a subtitle/caption format:
// blank-line-delimited blocks containing time-range markers.
func Looks(text string) bool {
	if !strings.Contains(text, "-->") {
		return false
	}
	return timeRangePattern.MatchString(text)
}

// PlainText extracts spoken text from a subtitle payload, dropping cue
// indices and timing lines and joining cue text with spaces.
func PlainText(text string) string {
	var parts []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if indexLinePattern.MatchString(line) {
				continue
			}
			if timeRangePattern.MatchString(line) {
				continue
			}
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
