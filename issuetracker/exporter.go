package issuetracker

import (
	"context"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// Exporter files test cases as issues. Failures are logged in full and
// reported to the caller as ErrCreateIssueFailed only.
type Exporter struct {
	client   Client
	provider ProviderType
	logger   logger.Logger
}

// NewExporter creates an exporter for a tracker client.
func NewExporter(client Client, provider ProviderType, log logger.Logger) *Exporter {
	return &Exporter{
		client:   client,
		provider: provider,
		logger:   log,
	}
}

// Export creates one issue for tc, titled with the test case name.
func (e *Exporter) Export(ctx context.Context, tc testcase.TestCase) (*Issue, error) {
	title := tc.Name
	if title == "" {
		title = tc.ID
	}

	issue, err := e.client.CreateIssue(ctx, CreateIssueInput{
		Title:    title,
		TestCase: tc,
	})
	if err != nil {
		e.logger.Error(ctx, "failed to create issue", map[string]interface{}{
			"error":        err.Error(),
			"tracker":      string(e.provider),
			"test_case_id": tc.ID,
		})
		return nil, ErrCreateIssueFailed
	}

	e.logger.Info(ctx, "issue created", map[string]interface{}{
		"tracker":      string(e.provider),
		"test_case_id": tc.ID,
		"external_id":  issue.ExternalID,
	})
	return issue, nil
}
