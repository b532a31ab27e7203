package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/resilient"
)

// tokenEnvVar is the opaque code-host credential, consumed from the
// environment rather than configuration so it never lands in a config file
// or cache entry.
const tokenEnvVar = "APRZ_GITHUB_TOKEN"

// DefaultBaseURL is the GitHub REST API, used unless overridden (tests
// point this at an httptest.Server).
const DefaultBaseURL = "https://api.github.com"

const (
	perPage       = 100
	maxPagesFetch = 10 // caps worst-case request volume per repo per item kind
)

type client struct {
	http    *http.Client
	baseURL string
}

// authTransport injects the opaque bearer token into every outbound request
// without leaking it into request-building code that might log a URL.
type authTransport struct {
	base  http.RoundTripper
	token string
}

func (t authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func newClient(httpClient *http.Client, baseURL string) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	authed := *httpClient
	authed.Transport = authTransport{base: httpClient.Transport, token: os.Getenv(tokenEnvVar)}
	return &client{http: &authed, baseURL: baseURL}
}

type repoSummary struct {
	StargazersCount   uint64 `json:"stargazers_count"`
	ForksCount        uint64 `json:"forks_count"`
	SubscribersCount  uint64 `json:"subscribers_count"`
}

func (c *client) getRepo(ctx context.Context, owner, repo string) (repoSummary, error) {
	var out repoSummary
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	err := c.getJSON(ctx, url, &out)
	return out, err
}

// commitsSince counts commits on the default branch since the given time,
// paginated up to maxPagesFetch pages (a bound, not an attempt at an exact
// count for very high-activity repos).
func (c *client) commitsSince(ctx context.Context, owner, repo string, since time.Time) (uint64, error) {
	var total uint64
	for page := 1; page <= maxPagesFetch; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/commits?since=%s&per_page=%d&page=%d",
			c.baseURL, owner, repo, since.UTC().Format(time.RFC3339), perPage, page)
		var commits []json.RawMessage
		if err := c.getJSON(ctx, url, &commits); err != nil {
			return 0, err
		}
		total += uint64(len(commits))
		if len(commits) < perPage {
			break
		}
	}
	return total, nil
}

type issueItem struct {
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	PullRequest json.RawMessage `json:"pull_request"`
}

// issuesAndPulls fetches both open and closed issues (the GitHub issues
// endpoint returns pull requests too, distinguished by a non-nil
// pull_request field) and splits them into issue and PR buckets.
func (c *client) issuesAndPulls(ctx context.Context, owner, repo string) (issues, pulls []issueItem, err error) {
	for _, state := range []string{"open", "closed"} {
		items, err := c.listIssues(ctx, owner, repo, state)
		if err != nil {
			return nil, nil, err
		}
		for _, item := range items {
			if item.PullRequest != nil {
				pulls = append(pulls, item)
			} else {
				issues = append(issues, item)
			}
		}
	}
	return issues, pulls, nil
}

func (c *client) listIssues(ctx context.Context, owner, repo, state string) ([]issueItem, error) {
	var all []issueItem
	for page := 1; page <= maxPagesFetch; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/issues?state=%s&per_page=%d&page=%d",
			c.baseURL, owner, repo, state, perPage, page)
		var items []issueItem
		if err := c.getJSON(ctx, url, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < perPage {
			break
		}
	}
	return all, nil
}

func (c *client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := resilient.Get(ctx, c.http, url)
	if err != nil {
		return fmt.Errorf("%w: requesting %q: %v", facts.ErrProvider, url, err)
	}
	defer resilient.DrainAndClose(resp)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected HTTP status %d from %q", facts.ErrProvider, resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response from %q: %v", facts.ErrParse, url, err)
	}
	return nil
}
