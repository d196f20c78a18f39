package testcase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoverage is returned when coverage is outside MinCoverage..MaxCoverage.
	ErrInvalidCoverage = fmt.Errorf("coverage must be between %d and %d", MinCoverage, MaxCoverage)

	// ErrInvalidEnvironment is returned when the environment tag is unknown.
	ErrInvalidEnvironment = errors.New("environment must be one of development, staging, production")

	// ErrInvalidPriority is returned when the priority focus tag is unknown.
	ErrInvalidPriority = errors.New("priority must be one of edge-cases, permissions, performance, security")

	// ErrInvalidComplexity is returned when the complexity tag is unknown.
	ErrInvalidComplexity = errors.New("complexity must be one of simple, moderate, complex")

	// ErrTestCaseNotFound is returned when a test case ID does not exist in a set.
	ErrTestCaseNotFound = errors.New("test case not found")
)

const (
	MinCoverage = 50
	MaxCoverage = 100
)

// TestCase is a single generated test case.
type TestCase struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Preconditions   string   `json:"preconditions"`
	Steps           []string `json:"steps"`
	ExpectedResults string   `json:"expectedResults"`
}

// Find returns the test case with the given ID.
func Find(cases []TestCase, id string) (*TestCase, error) {
	for i := range cases {
		if cases[i].ID == id {
			tc := cases[i]
			return &tc, nil
		}
	}
	return nil, ErrTestCaseNotFound
}

// Environment is the environment the generated tests target.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
)

// IsValid checks if the environment is valid.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentDevelopment, EnvironmentStaging, EnvironmentProduction:
		return true
	default:
		return false
	}
}

// Priority is the area the generated tests should focus on.
type Priority string

const (
	PriorityEdgeCases   Priority = "edge-cases"
	PriorityPermissions Priority = "permissions"
	PriorityPerformance Priority = "performance"
	PrioritySecurity    Priority = "security"
)

// IsValid checks if the priority is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityEdgeCases, PriorityPermissions, PriorityPerformance, PrioritySecurity:
		return true
	default:
		return false
	}
}

// Complexity is the requested depth of the generated tests.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// IsValid checks if the complexity is valid.
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	default:
		return false
	}
}

// Customization steers the generation prompt. It is passed by value.
type Customization struct {
	Coverage    int         `json:"coverage"`
	Environment Environment `json:"environment"`
	Priority    Priority    `json:"priority"`
	Complexity  Complexity  `json:"complexity"`
}

// DefaultCustomization returns the options a fresh workspace starts with.
func DefaultCustomization() Customization {
	return Customization{
		Coverage:    80,
		Environment: EnvironmentDevelopment,
		Priority:    PriorityEdgeCases,
		Complexity:  ComplexityModerate,
	}
}

// Validate checks every field of the customization.
func (c Customization) Validate() error {
	if c.Coverage < MinCoverage || c.Coverage > MaxCoverage {
		return ErrInvalidCoverage
	}
	if !c.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if !c.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !c.Complexity.IsValid() {
		return ErrInvalidComplexity
	}
	return nil
}
