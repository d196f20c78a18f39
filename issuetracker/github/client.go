package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

const defaultBaseURL = "https://api.github.com"

// DefaultLabels are applied to issues created without explicit labels.
var DefaultLabels = []string{"test-case"}

// Client implements the issuetracker.Client interface for GitHub.
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	defaultRepo string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewClient creates a new GitHub issue tracker client.
func NewClient(cfg issuetracker.GitHubConfig, opts ...Option) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	if cfg.Repository != "" {
		if _, _, err := parseOwnerRepo(cfg.Repository); err != nil {
			return nil, err
		}
	}

	baseURL := defaultBaseURL
	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		token:       cfg.Token,
		baseURL:     baseURL,
		defaultRepo: cfg.Repository,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("github: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("github: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// parseOwnerRepo parses "owner/repo" into owner and repo.
func parseOwnerRepo(repository string) (owner, repo string, err error) {
	parts := strings.SplitN(repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("github: invalid repository format, expected owner/repo")
	}
	return parts[0], parts[1], nil
}

// IssueBody renders a test case as the markdown body of an issue.
func IssueBody(tc testcase.TestCase) string {
	return testcase.Markdown([]testcase.TestCase{tc})
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

type githubIssue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateIssue opens a GitHub issue describing the test case.
func (c *Client) CreateIssue(ctx context.Context, input issuetracker.CreateIssueInput) (*issuetracker.Issue, error) {
	repository := input.Repository
	if repository == "" {
		repository = c.defaultRepo
	}
	if repository == "" {
		return nil, fmt.Errorf("github: repository is required")
	}
	owner, repo, err := parseOwnerRepo(repository)
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = input.TestCase.Name
	}

	labels := input.Labels
	if len(labels) == 0 {
		labels = DefaultLabels
	}

	reqBody := createIssueRequest{
		Title:  title,
		Body:   IssueBody(input.TestCase),
		Labels: labels,
	}

	apiURL := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, owner, repo)
	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("github: create issue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github: create issue failed with status %d: %s", resp.StatusCode, string(body))
	}

	var gi githubIssue
	if err := json.NewDecoder(resp.Body).Decode(&gi); err != nil {
		return nil, fmt.Errorf("github: failed to decode response: %w", err)
	}

	return &issuetracker.Issue{
		ExternalID: fmt.Sprintf("%s/%s#%d", owner, repo, gi.Number),
		Title:      gi.Title,
		URL:        gi.HTMLURL,
		Provider:   issuetracker.ProviderGitHub,
		CreatedAt:  gi.CreatedAt,
	}, nil
}

// ValidateConnection validates the GitHub connection by fetching the authenticated user.
func (c *Client) ValidateConnection(ctx context.Context) error {
	apiURL := fmt.Sprintf("%s/user", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", issuetracker.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", issuetracker.ErrConnectionFailed, resp.StatusCode)
	}

	return nil
}
