package testcase

import (
	"fmt"
	"strings"
)

// Format renders test cases in the labeled block format the parser reads.
func Format(cases []TestCase) string {
	var b strings.Builder
	for i, tc := range cases {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Test Case %d:\n", i+1)
		fmt.Fprintf(&b, "%s %s\n", LabelDescription, tc.Description)
		fmt.Fprintf(&b, "%s %s\n", LabelPreconditions, tc.Preconditions)
		b.WriteString(LabelSteps + "\n")
		for j, step := range tc.Steps {
			fmt.Fprintf(&b, "%d. %s\n", j+1, step)
		}
		fmt.Fprintf(&b, "%s %s\n", LabelExpectedResults, tc.ExpectedResults)
	}
	return b.String()
}

// Markdown renders test cases as a markdown document for display.
func Markdown(cases []TestCase) string {
	var b strings.Builder
	for i, tc := range cases {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## %s (%s)\n\n", orDefault(tc.Name, "Untitled"), tc.ID)
		fmt.Fprintf(&b, "%s\n\n", orDefault(tc.Description, "_No description provided_"))
		if tc.Preconditions != "" {
			fmt.Fprintf(&b, "**Preconditions:** %s\n\n", tc.Preconditions)
		}
		if len(tc.Steps) > 0 {
			b.WriteString("**Steps:**\n\n")
			for j, step := range tc.Steps {
				fmt.Fprintf(&b, "%d. %s\n", j+1, step)
			}
			b.WriteString("\n")
		}
		if tc.ExpectedResults != "" {
			fmt.Fprintf(&b, "**Expected Results:** %s\n", tc.ExpectedResults)
		}
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
