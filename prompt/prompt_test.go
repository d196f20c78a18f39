package prompt

import (
	"strings"
	"testing"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	custom := testcase.Customization{
		Coverage:    90,
		Environment: testcase.EnvironmentStaging,
		Priority:    testcase.PrioritySecurity,
		Complexity:  testcase.ComplexityComplex,
	}

	tests := []struct {
		name        string
		requirement string
		template    string
		checkOutput func(t *testing.T, prompt string)
	}{
		{
			name:        "contains requirement and customization",
			requirement: "Users can reset their password via email",
			checkOutput: func(t *testing.T, prompt string) {
				assert.Contains(t, prompt, "Users can reset their password via email")
				assert.Contains(t, prompt, "Test Coverage: 90%")
				assert.Contains(t, prompt, "Testing Environment: staging")
				assert.Contains(t, prompt, "Priority Focus: security")
				assert.Contains(t, prompt, "Test Complexity: complex")
				assert.Contains(t, prompt, "at least 3 test cases")
			},
		},
		{
			name:        "example block uses parser labels",
			requirement: "Login",
			checkOutput: func(t *testing.T, prompt string) {
				assert.Contains(t, prompt, "Test Case 1:\nDescription: [description]\nPreconditions: [preconditions]\nSteps:\n1. [step 1]\n2. [step 2]\nExpected Results: [expected results]")
			},
		},
		{
			name:        "template is prepended",
			requirement: "Login",
			template:    "Always include an accessibility check.",
			checkOutput: func(t *testing.T, prompt string) {
				assert.True(t, strings.HasPrefix(prompt, "Always include an accessibility check.\n\n"))
			},
		},
		{
			name:        "no template leaves no leading blank lines",
			requirement: "Login",
			checkOutput: func(t *testing.T, prompt string) {
				assert.True(t, strings.HasPrefix(prompt, "Generate test cases for the following requirement:"))
			},
		},
		{
			name:        "requirement is sanitized",
			requirement: "  Login\x00 with    email\n\n\n\nand password  ",
			checkOutput: func(t *testing.T, prompt string) {
				assert.Contains(t, prompt, "Login with email\n\nand password\n")
				assert.NotContains(t, prompt, "\x00")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkOutput(t, Build(tt.requirement, tt.template, custom))
		})
	}
}

func TestBuild_NeverFails(t *testing.T) {
	long := strings.Repeat("a", MaxRequirementLength+1)
	out := Build(long, "", testcase.DefaultCustomization())
	assert.Contains(t, out, long)
	assert.Contains(t, out, "Test Case 1:")

	out = Build("", "", testcase.DefaultCustomization())
	assert.True(t, strings.HasPrefix(out, "Generate test cases for the following requirement:\n\n"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		requirement string
		template    string
		wantErr     error
	}{
		{name: "valid", requirement: "Login"},
		{name: "max lengths accepted", requirement: strings.Repeat("a", MaxRequirementLength), template: strings.Repeat("b", MaxTemplateLength)},
		{name: "empty requirement", requirement: "", wantErr: ErrEmptyRequirement},
		{name: "whitespace requirement", requirement: " \n\t ", wantErr: ErrEmptyRequirement},
		{name: "requirement too long", requirement: strings.Repeat("a", MaxRequirementLength+1), wantErr: ErrRequirementTooLong},
		{name: "template too long", requirement: "Login", template: strings.Repeat("b", MaxTemplateLength+1), wantErr: ErrTemplateTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.requirement, tt.template)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain text unchanged", input: "Reset password", expected: "Reset password"},
		{name: "newlines preserved", input: "Line 1\nLine 2", expected: "Line 1\nLine 2"},
		{name: "excess newlines collapsed", input: "A\n\n\n\nB", expected: "A\n\nB"},
		{name: "whitespace-only lines collapsed", input: "A\n   \n \n\nB", expected: "A\n\nB"},
		{name: "crlf normalized", input: "A\r\nB", expected: "A\nB"},
		{name: "tabs and spaces collapsed", input: "A \t  B", expected: "A B"},
		{name: "control characters removed", input: "A\x00B\x07C", expected: "ABC"},
		{name: "unicode kept", input: "Benutzer können sich anmelden", expected: "Benutzer können sich anmelden"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeText(tt.input))
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate(""))
	assert.NoError(t, ValidateTemplate(strings.Repeat("é", MaxTemplateLength)))
	assert.ErrorIs(t, ValidateTemplate(strings.Repeat("a", MaxTemplateLength+1)), ErrTemplateTooLong)
}
