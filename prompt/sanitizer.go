package prompt

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	excessNewlines   = regexp.MustCompile(`\n{3,}`)
	inlineWhitespace = regexp.MustCompile(`[ \t]+`)
)

// SanitizeText removes control and non-printable characters from user text,
// collapses runs of blank lines and normalizes whitespace within lines.
// Newlines are kept so numbered lists and paragraphs survive.
func SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)

	var clean strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' {
			clean.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			continue
		}
		clean.WriteRune(r)
	}
	s = clean.String()

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineWhitespace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
