package issuetracker

import (
	"context"
	"errors"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

var (
	ErrInvalidProvider  = errors.New("invalid provider type")
	ErrConnectionFailed = errors.New("connection validation failed")
	ErrNotConfigured    = errors.New("issue tracker is not configured")

	// ErrCreateIssueFailed is the only error Exporter.Export returns.
	ErrCreateIssueFailed = errors.New("failed to create issue")
)

type ProviderType string

const (
	ProviderJira   ProviderType = "jira"
	ProviderGitHub ProviderType = "github"
)

func (p ProviderType) IsValid() bool {
	return p == ProviderJira || p == ProviderGitHub
}

// Issue is an issue created in an external tracker.
type Issue struct {
	ExternalID string       `json:"external_id"`
	Title      string       `json:"title"`
	URL        string       `json:"url"`
	Provider   ProviderType `json:"provider"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CreateIssueInput describes the issue to create for a test case.
// Empty ProjectKey and Repository fall back to the client's configuration.
type CreateIssueInput struct {
	Title      string            `json:"title"`
	TestCase   testcase.TestCase `json:"test_case"`
	ProjectKey string            `json:"project_key"`
	IssueType  string            `json:"issue_type"`
	Repository string            `json:"repository"`
	Labels     []string          `json:"labels"`
}

type Client interface {
	CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error)
	ValidateConnection(ctx context.Context) error
}

// JiraConfig holds the connection settings for a Jira Cloud site.
type JiraConfig struct {
	Domain   string `json:"domain"`
	Email    string `json:"email"`
	APIToken string `json:"apiToken"`
	Project  string `json:"project"`
}

// IsConfigured reports whether every field needed to create an issue is set.
func (c JiraConfig) IsConfigured() bool {
	return c.Domain != "" && c.Email != "" && c.APIToken != "" && c.Project != ""
}

// GitHubConfig holds the connection settings for GitHub issues.
type GitHubConfig struct {
	Token      string `json:"token"`
	Repository string `json:"repository"`
	BaseURL    string `json:"baseUrl,omitempty"`
}

// IsConfigured reports whether every field needed to create an issue is set.
func (c GitHubConfig) IsConfigured() bool {
	return c.Token != "" && c.Repository != ""
}

// TrackerConfig holds the settings of every supported tracker.
type TrackerConfig struct {
	Jira   JiraConfig   `json:"jira"`
	GitHub GitHubConfig `json:"github"`
}

type ClientFactory interface {
	NewClient(provider ProviderType, cfg TrackerConfig) (Client, error)
}
