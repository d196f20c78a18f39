package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

const (
	// SystemPrompt is sent as the system message to chat-style providers.
	SystemPrompt = "You are a QA engineer who writes clear, detailed test cases."

	// MinTestCases is the minimum number of test cases requested from the provider.
	MinTestCases = 3

	MaxRequirementLength = 10000
	MaxTemplateLength    = 50000
)

var (
	// ErrEmptyRequirement is returned when the requirement is empty or whitespace only.
	ErrEmptyRequirement = errors.New("requirement is required")

	// ErrRequirementTooLong is returned when the requirement exceeds MaxRequirementLength.
	ErrRequirementTooLong = fmt.Errorf("requirement exceeds maximum length of %d characters", MaxRequirementLength)

	// ErrTemplateTooLong is returned when the template exceeds MaxTemplateLength.
	ErrTemplateTooLong = fmt.Errorf("template exceeds maximum length of %d characters", MaxTemplateLength)
)

// Build constructs the user prompt asking the provider for test cases in the
// labeled block format understood by testcase.Parse. It never fails; callers
// run Validate on user input first.
func Build(requirement, template string, c testcase.Customization) string {
	requirement = SanitizeText(requirement)
	template = SanitizeText(template)

	var b strings.Builder
	if template != "" {
		b.WriteString(template)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, `Generate test cases for the following requirement:
%s

Consider the following testing parameters:
- Test Coverage: %d%%
- Testing Environment: %s
- Priority Focus: %s
- Test Complexity: %s

Please format each test case as follows:
%s

Please generate at least %d test cases following this exact format.
`,
		requirement,
		c.Coverage,
		c.Environment,
		c.Priority,
		c.Complexity,
		exampleBlock(),
		MinTestCases,
	)

	return b.String()
}

// Validate checks the raw requirement and template before they reach Build.
func Validate(requirement, template string) error {
	if strings.TrimSpace(requirement) == "" {
		return ErrEmptyRequirement
	}
	if utf8.RuneCountInString(requirement) > MaxRequirementLength {
		return ErrRequirementTooLong
	}
	return ValidateTemplate(template)
}

// ValidateTemplate checks the length of an imported template.
func ValidateTemplate(template string) error {
	if utf8.RuneCountInString(template) > MaxTemplateLength {
		return ErrTemplateTooLong
	}
	return nil
}

func exampleBlock() string {
	return strings.Join([]string{
		"Test Case 1:",
		testcase.LabelDescription + " [description]",
		testcase.LabelPreconditions + " [preconditions]",
		testcase.LabelSteps,
		"1. [step 1]",
		"2. [step 2]",
		testcase.LabelExpectedResults + " [expected results]",
	}, "\n")
}
