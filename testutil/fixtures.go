package testutil

import (
	"testing"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
	"gorm.io/gorm"
)

// CreateFixture inserts a row directly, bypassing the store under test.
func CreateFixture(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()
	if err := db.Create(model).Error; err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
}

// LoginTestCases returns a small, fully populated set of parsed test cases.
func LoginTestCases() []testcase.TestCase {
	return []testcase.TestCase{
		{
			ID:              "TC1",
			Name:            "Valid login",
			Description:     "User signs in with valid credentials",
			Preconditions:   "User account exists",
			Steps:           []string{"Open the login page", "Enter valid credentials", "Click Sign in"},
			ExpectedResults: "User lands on the dashboard",
		},
		{
			ID:              "TC2",
			Name:            "Locked account",
			Description:     "Sign in is refused for a locked account",
			Preconditions:   "Account is locked after 5 failed attempts",
			Steps:           []string{"Open the login page", "Enter the locked account credentials"},
			ExpectedResults: "An account locked message is shown",
		},
	}
}
