package scriptgen

import (
	"fmt"
	"strings"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// InvalidTestCaseCode is the code emitted for a missing test case.
const InvalidTestCaseCode = "# Error: Invalid test case"

const indent = "    "

// PytestCase is the pytest skeleton generated for one test case.
type PytestCase struct {
	Name     string `json:"name,omitempty"`
	Code     string `json:"code"`
	FilePath string `json:"filePath,omitempty"`
}

// FunctionName derives the pytest function name from the test case name,
// or from its ID when the name is empty.
func FunctionName(tc testcase.TestCase) string {
	source := tc.Name
	if source == "" {
		source = tc.ID
	}
	return "test_" + identifier(source)
}

// identifier lower-cases s and replaces every rune outside [a-z0-9] with '_'.
func identifier(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToLower(s))
}

// Convert renders a pytest skeleton for tc. The body only restates the steps
// as comments and ends in a placeholder assertion.
func Convert(tc *testcase.TestCase) PytestCase {
	if tc == nil {
		return PytestCase{Code: InvalidTestCaseCode}
	}

	name := FunctionName(*tc)

	var b strings.Builder
	b.WriteString("import pytest\n\n")
	fmt.Fprintf(&b, "def %s():\n", name)
	b.WriteString(indent + `"""` + "\n")
	docLine(&b, orDefault(tc.Description, "No description provided"))
	b.WriteString("\n")
	docLine(&b, "Preconditions:")
	docLine(&b, orDefault(tc.Preconditions, "None"))
	b.WriteString("\n")
	docLine(&b, "Steps:")
	if len(tc.Steps) == 0 {
		docLine(&b, "No steps provided")
	}
	for i, step := range tc.Steps {
		docLine(&b, fmt.Sprintf("%d. %s", i+1, step))
	}
	b.WriteString("\n")
	docLine(&b, "Expected Results:")
	docLine(&b, orDefault(tc.ExpectedResults, "No expected results provided"))
	b.WriteString(indent + `"""` + "\n")

	b.WriteString(indent + "# TODO: Implement test steps\n")
	if len(tc.Steps) == 0 {
		b.WriteString(indent + "# No steps to implement\n")
	}
	for _, step := range tc.Steps {
		b.WriteString(indent + "# " + flatten(step) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(indent + "# Add assertions here\n")
	b.WriteString(indent + "assert True  # Placeholder assertion\n")

	return PytestCase{
		Name:     name,
		Code:     b.String(),
		FilePath: "tests/" + name + ".py",
	}
}

// ExportAll concatenates the skeletons of every case, in order, separated
// by a blank line.
func ExportAll(cases []testcase.TestCase) string {
	blocks := make([]string, 0, len(cases))
	for i := range cases {
		blocks = append(blocks, Convert(&cases[i]).Code)
	}
	return strings.Join(blocks, "\n\n")
}

// docLine writes text into the docstring, indenting every line and keeping
// the closing quotes out of user text.
func docLine(b *strings.Builder, text string) {
	text = strings.ReplaceAll(text, `"""`, `\"\"\"`)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(indent + strings.TrimRight(line, " \t\r") + "\n")
	}
}

// flatten keeps a step on a single comment line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
