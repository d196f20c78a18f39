package jira

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
)

// DefaultIssueType is the Jira issue type used for exported test cases.
const DefaultIssueType = "Test"

// Client implements the issuetracker.Client interface for Jira.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	email          string
	apiToken       string
	defaultProject string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewClient creates a new Jira issue tracker client. A domain without a
// scheme is reached over HTTPS.
func NewClient(cfg issuetracker.JiraConfig, opts ...Option) (*Client, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("jira: domain is required")
	}
	if cfg.Email == "" {
		return nil, fmt.Errorf("jira: email is required")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("jira: api token is required")
	}

	c := &Client{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		baseURL:        BaseURL(cfg.Domain),
		email:          cfg.Email,
		apiToken:       cfg.APIToken,
		defaultProject: cfg.Project,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL turns a Jira domain into the site URL.
func BaseURL(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("jira: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("jira: failed to create request: %w", err)
	}

	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

type createIssueRequest struct {
	Fields createIssueFields `json:"fields"`
}

type createIssueFields struct {
	Project     keyRef   `json:"project"`
	Summary     string   `json:"summary"`
	Description adfNode  `json:"description"`
	IssueType   nameRef  `json:"issuetype"`
	Labels      []string `json:"labels,omitempty"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

// CreateIssue creates a Jira issue describing the test case.
func (c *Client) CreateIssue(ctx context.Context, input issuetracker.CreateIssueInput) (*issuetracker.Issue, error) {
	projectKey := input.ProjectKey
	if projectKey == "" {
		projectKey = c.defaultProject
	}
	if projectKey == "" {
		return nil, fmt.Errorf("jira: project key is required")
	}

	issueType := input.IssueType
	if issueType == "" {
		issueType = DefaultIssueType
	}

	summary := input.Title
	if summary == "" {
		summary = input.TestCase.Name
	}

	reqBody := createIssueRequest{
		Fields: createIssueFields{
			Project:     keyRef{Key: projectKey},
			Summary:     summary,
			Description: buildDescription(input.TestCase),
			IssueType:   nameRef{Name: issueType},
			Labels:      input.Labels,
		},
	}

	apiURL := fmt.Sprintf("%s/rest/api/3/issue", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("jira: create issue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jira: create issue failed with status %d: %s", resp.StatusCode, string(body))
	}

	var created struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("jira: failed to decode response: %w", err)
	}

	return &issuetracker.Issue{
		ExternalID: created.Key,
		Title:      summary,
		URL:        fmt.Sprintf("%s/browse/%s", c.baseURL, created.Key),
		Provider:   issuetracker.ProviderJira,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ValidateConnection validates the Jira connection by fetching the authenticated user.
func (c *Client) ValidateConnection(ctx context.Context) error {
	apiURL := fmt.Sprintf("%s/rest/api/3/myself", c.baseURL)
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
