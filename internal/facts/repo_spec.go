package facts

import (
	"fmt"
	"net/url"
	"strings"
)

// RepoSpec is the canonical identifier of a source repository: scheme, host,
// owner and repo name. Two URLs that point at the same repository but differ
// in trailing path segments or a ".git" suffix parse to an equal RepoSpec.
type RepoSpec struct {
	url   *url.URL
	host  string
	owner string
	repo  string
}

// ParseRepoSpec extracts a RepoSpec from an arbitrary repository URL, keeping
// only scheme://host/owner/repo and discarding any deeper path segments.
func ParseRepoSpec(u *url.URL) (RepoSpec, error) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return RepoSpec{}, fmt.Errorf("invalid repository URL format: %s", u)
	}
	owner, repo := segments[0], segments[1]
	if owner == "" || repo == "" {
		return RepoSpec{}, fmt.Errorf("invalid repository URL: empty owner or repo name: %s", u)
	}
	repo = strings.TrimSuffix(repo, ".git")

	clean := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/" + owner + "/" + repo}
	return RepoSpec{url: clean, host: u.Host, owner: owner, repo: repo}, nil
}

func (s RepoSpec) URL() *url.URL { return s.url }
func (s RepoSpec) Host() string  { return s.host }
func (s RepoSpec) Owner() string { return s.owner }
func (s RepoSpec) Repo() string  { return s.repo }

func (s RepoSpec) String() string {
	if s.url == nil {
		return ""
	}
	return s.url.String()
}

// Equal reports whether two RepoSpecs identify the same repository.
func (s RepoSpec) Equal(other RepoSpec) bool {
	return s.host == other.host && s.owner == other.owner && s.repo == other.repo
}
