package testcase

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	LabelDescription     = "Description:"
	LabelPreconditions   = "Preconditions:"
	LabelSteps           = "Steps:"
	LabelExpectedResults = "Expected Results:"

	// FallbackDescription marks the synthetic case produced from unparseable output.
	FallbackDescription = "Parsing error - Raw response:"
)

var (
	// markerPattern matches the case-sensitive "Test Case <n>:" segment marker.
	markerPattern = regexp.MustCompile(`Test Case \d+:`)

	// stepNumberPattern matches "N." numbering that starts a line or follows
	// whitespace and is itself followed by whitespace, so "2.5" and "v2.0"
	// stay inside their step.
	stepNumberPattern = regexp.MustCompile(`(?m)(?:^|\s)\d+\.(?:\s|$)`)
)

// fieldBound pairs a label with the label that ends its capture.
// An empty bound captures to the end of the segment.
type fieldBound struct {
	label string
	bound string
}

var (
	descriptionField     = fieldBound{LabelDescription, LabelPreconditions}
	preconditionsField   = fieldBound{LabelPreconditions, LabelSteps}
	stepsField           = fieldBound{LabelSteps, LabelExpectedResults}
	expectedResultsField = fieldBound{LabelExpectedResults, ""}
)

// Parse turns free-form provider output into test cases. It never fails:
// output without any usable "Test Case N:" segment yields a single fallback
// case whose only step is the raw text.
func Parse(raw string) []TestCase {
	segments := Segments(raw)
	if len(segments) == 0 {
		return []TestCase{fallback(raw)}
	}

	cases := make([]TestCase, 0, len(segments))
	for i, segment := range segments {
		cases = append(cases, parseSegment(i+1, segment))
	}
	return cases
}

// Segments returns the text between consecutive "Test Case N:" markers.
// Text before the first marker and whitespace-only segments are dropped.
func Segments(raw string) []string {
	locs := markerPattern.FindAllStringIndex(raw, -1)
	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := raw[loc[1]:end]
		if strings.TrimSpace(segment) == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

func parseSegment(n int, segment string) TestCase {
	return TestCase{
		ID:              fmt.Sprintf("TC%d", n),
		Name:            fmt.Sprintf("Test Case %d", n),
		Description:     capture(segment, descriptionField),
		Preconditions:   capture(segment, preconditionsField),
		Steps:           SplitSteps(capture(segment, stepsField)),
		ExpectedResults: capture(segment, expectedResultsField),
	}
}

// capture returns the trimmed text following f.label up to the first f.bound
// after it, or to the end of the segment. A missing label yields "".
func capture(segment string, f fieldBound) string {
	start := strings.Index(segment, f.label)
	if start < 0 {
		return ""
	}
	rest := segment[start+len(f.label):]
	if f.bound != "" {
		if end := strings.Index(rest, f.bound); end >= 0 {
			rest = rest[:end]
		}
	}
	return strings.TrimSpace(rest)
}

// SplitSteps splits a steps block on "N." numbering, on separate lines or inline.
// Fragments are trimmed and empty fragments are dropped; order is preserved.
func SplitSteps(text string) []string {
	steps := make([]string, 0)
	for _, fragment := range stepNumberPattern.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		steps = append(steps, fragment)
	}
	return steps
}

func fallback(raw string) TestCase {
	return TestCase{
		ID:          "TC1",
		Name:        "Test Case 1",
		Description: FallbackDescription,
		Steps:       []string{raw},
	}
}
