// Package trackers builds issue tracker clients from settings.
package trackers

import (
	"fmt"
	"net/http"

	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker/github"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker/jira"
)

// Factory implements issuetracker.ClientFactory for Jira and GitHub.
type Factory struct {
	// HTTPClient is used by every client when set.
	HTTPClient *http.Client
}

// NewClient builds the client for provider. A tracker whose settings are
// incomplete yields issuetracker.ErrNotConfigured.
func (f Factory) NewClient(provider issuetracker.ProviderType, cfg issuetracker.TrackerConfig) (issuetracker.Client, error) {
	switch provider {
	case issuetracker.ProviderJira:
		if !cfg.Jira.IsConfigured() {
			return nil, fmt.Errorf("jira: %w", issuetracker.ErrNotConfigured)
		}
		var opts []jira.Option
		if f.HTTPClient != nil {
			opts = append(opts, jira.WithHTTPClient(f.HTTPClient))
		}
		return jira.NewClient(cfg.Jira, opts...)
	case issuetracker.ProviderGitHub:
		if !cfg.GitHub.IsConfigured() {
			return nil, fmt.Errorf("github: %w", issuetracker.ErrNotConfigured)
		}
		var opts []github.Option
		if f.HTTPClient != nil {
			opts = append(opts, github.WithHTTPClient(f.HTTPClient))
		}
		return github.NewClient(cfg.GitHub, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", issuetracker.ErrInvalidProvider, provider)
	}
}
