package testcase

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ResetPasswordScenario(t *testing.T) {
	raw := "Test Case 1:\nDescription: Verify reset flow\nPreconditions: User has account\nSteps:\n1. Go to login\n2. Click reset\nExpected Results: Email sent"

	cases := Parse(raw)

	require.Len(t, cases, 1)
	assert.Equal(t, "TC1", cases[0].ID)
	assert.Equal(t, "Test Case 1", cases[0].Name)
	assert.Equal(t, "Verify reset flow", cases[0].Description)
	assert.Equal(t, "User has account", cases[0].Preconditions)
	assert.Equal(t, []string{"Go to login", "Click reset"}, cases[0].Steps)
	assert.Equal(t, "Email sent", cases[0].ExpectedResults)
}

func TestParse_RoundTrip(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		t.Run(fmt.Sprintf("%d cases", n), func(t *testing.T) {
			want := make([]TestCase, 0, n)
			for i := 1; i <= n; i++ {
				want = append(want, TestCase{
					ID:              fmt.Sprintf("TC%d", i),
					Name:            fmt.Sprintf("Test Case %d", i),
					Description:     fmt.Sprintf("Description for case %d", i),
					Preconditions:   fmt.Sprintf("Precondition %d holds", i),
					Steps:           []string{"Open the page", fmt.Sprintf("Submit form %d", i), "Observe the banner"},
					ExpectedResults: fmt.Sprintf("Result %d is shown", i),
				})
			}

			got := Parse(Format(want))
			assert.Equal(t, want, got)
		})
	}
}

func TestParse_FallbackWithoutMarkers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "I could not produce test cases for that requirement."},
		{name: "empty string", raw: ""},
		{name: "lowercase marker is not a marker", raw: "test case 1:\nDescription: nope"},
		{name: "marker without number", raw: "Test Case A:\nDescription: nope"},
		{name: "marker with nothing after it", raw: "Test Case 1:   \n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases := Parse(tt.raw)
			require.Len(t, cases, 1)
			assert.Equal(t, FallbackDescription, cases[0].Description)
			require.Len(t, cases[0].Steps, 1)
			assert.Equal(t, tt.raw, cases[0].Steps[0])
		})
	}
}

func TestParse_MissingLabelsYieldEmptyFields(t *testing.T) {
	raw := "Test Case 1:\nDescription: Only a description\nExpected Results: Something"

	cases := Parse(raw)

	require.Len(t, cases, 1)
	assert.Equal(t, "Only a description\nExpected Results: Something", cases[0].Description,
		"description runs to end of segment when Preconditions: is absent")
	assert.Empty(t, cases[0].Preconditions)
	assert.Empty(t, cases[0].Steps)
	assert.NotNil(t, cases[0].Steps)
	assert.Equal(t, "Something", cases[0].ExpectedResults)
}

func TestParse_IgnoresPreambleAndEmptySegments(t *testing.T) {
	raw := "Sure! Here are your test cases.\n\nTest Case 1:\n\nTest Case 2:\nDescription: Second\nPreconditions: None\nSteps:\n1. Do it\nExpected Results: Done\n"

	cases := Parse(raw)

	require.Len(t, cases, 1)
	assert.Equal(t, "TC1", cases[0].ID)
	assert.Equal(t, "Second", cases[0].Description)
	assert.Equal(t, []string{"Do it"}, cases[0].Steps)
}

func TestParse_MultipleCasesKeepOrder(t *testing.T) {
	raw := strings.Join([]string{
		"Test Case 1:",
		"Description: First",
		"Preconditions: A",
		"Steps:",
		"1. one",
		"Expected Results: ok1",
		"",
		"Test Case 2:",
		"Description: Second",
		"Preconditions: B",
		"Steps:",
		"1. two",
		"2. three",
		"Expected Results: ok2",
	}, "\n")

	cases := Parse(raw)

	require.Len(t, cases, 2)
	assert.Equal(t, "First", cases[0].Description)
	assert.Equal(t, "ok1", cases[0].ExpectedResults)
	assert.Equal(t, "Second", cases[1].Description)
	assert.Equal(t, []string{"two", "three"}, cases[1].Steps)
	assert.Equal(t, "TC2", cases[1].ID)
}

func TestSplitSteps(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "numbered lines", text: "1. a\n2. b\n3. c", want: []string{"a", "b", "c"}},
		{name: "indented numbering", text: "  1. a\n  10. b", want: []string{"a", "b"}},
		{name: "inline numbers are not split", text: "1. wait 2.5 seconds", want: []string{"wait 2.5 seconds"}},
		{name: "numbering on one line", text: "1. Go to login 2. Click reset 3. Check mail", want: []string{"Go to login", "Click reset", "Check mail"}},
		{name: "version numbers are not split", text: "1. Install v2.0 2. Restart", want: []string{"Install v2.0", "Restart"}},
		{name: "crlf line endings", text: "1. a\r\n2. b\r\n", want: []string{"a", "b"}},
		{name: "unnumbered text is one step", text: "just do it", want: []string{"just do it"}},
		{name: "empty", text: "", want: []string{}},
		{name: "numbering only", text: "1.\n2.", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSteps(tt.text))
		})
	}
}

func TestParse_InlineNumberedSteps(t *testing.T) {
	raw := "Test Case 1:\nDescription: d\nPreconditions: p\nSteps: 1. Go to login 2. Click reset 3. Check mail\nExpected Results: e"

	cases := Parse(raw)
	require.Len(t, cases, 1)
	assert.Equal(t, []string{"Go to login", "Click reset", "Check mail"}, cases[0].Steps)
	assert.Equal(t, "e", cases[0].ExpectedResults)
}

func TestSegments(t *testing.T) {
	segs := Segments("intro Test Case 1: one Test Case 22: two")
	assert.Equal(t, []string{" one ", " two"}, segs)
	assert.Empty(t, Segments("no markers"))
}
