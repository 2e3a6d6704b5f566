package services

import (
	"fmt"
	"net/url"
	"strings"
)

// GitHubHost is the only hosting provider whose repository URLs are resolved
const GitHubHost = "github.com"

const sshPrefix = "git@" + GitHubHost + ":"

// RepositoryRef identifies a repository on the hosting provider
type RepositoryRef struct {
	Owner string
	Repo  string
}

// String returns "owner/repo"
func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Repo
}

// ParseRepositoryURL extracts owner and repository from a GitHub URL.
//
// Accepted shapes:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	git@github.com:owner/repo.git
//	github.com/owner/repo
//
// Anything else returns an error; the error is informational only.
func ParseRepositoryURL(raw string) (RepositoryRef, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return RepositoryRef{}, fmt.Errorf("empty repository URL")
	}

	if hasPrefixFold(normalized, sshPrefix) {
		normalized = "https://" + GitHubHost + "/" + normalized[len(sshPrefix):]
	}

	if !hasPrefixFold(normalized, "http://") && !hasPrefixFold(normalized, "https://") {
		normalized = "https://" + normalized
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return RepositoryRef{}, fmt.Errorf("invalid repository URL %q: %w", raw, err)
	}

	if !strings.EqualFold(u.Hostname(), GitHubHost) {
		return RepositoryRef{}, fmt.Errorf("not a %s URL: %q", GitHubHost, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, fmt.Errorf("repository URL %q has no owner/repo path", raw)
	}

	owner, repo := parts[0], parts[1]
	if len(repo) > len(".git") && strings.EqualFold(repo[len(repo)-len(".git"):], ".git") {
		repo = repo[:len(repo)-len(".git")]
	}

	return RepositoryRef{Owner: owner, Repo: repo}, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
