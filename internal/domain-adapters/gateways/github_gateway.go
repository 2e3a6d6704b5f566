package gateways

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

const (
	// DefaultUserAgent identifies this tool to upstream services
	DefaultUserAgent = "sbom-licenses/1.0"

	// DefaultRequestTimeout bounds every outbound request
	DefaultRequestTimeout = 30 * time.Second

	// DefaultGitHubAPIURL is the public GitHub REST API root
	DefaultGitHubAPIURL = "https://api.github.com"

	// maxLicenseBytes caps license documents and API responses
	maxLicenseBytes = 10 * 1024 * 1024
)

// ErrUnexpectedResponse is returned when the license API answers with a shape
// this client does not understand
var ErrUnexpectedResponse = errors.New("unexpected GitHub API response format")

// HTTPGitHubGateway fetches repository licenses from the GitHub REST API
type HTTPGitHubGateway struct {
	client    *http.Client
	apiURL    string
	token     string
	userAgent string
}

// NewHTTPGitHubGateway creates a new GitHub license gateway. The token is
// optional; without one the anonymous rate limit applies.
func NewHTTPGitHubGateway(token, userAgent string, timeout time.Duration) *HTTPGitHubGateway {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPGitHubGateway{
		client:    &http.Client{Timeout: timeout},
		apiURL:    DefaultGitHubAPIURL,
		token:     token,
		userAgent: userAgent,
	}
}

// WithBaseURL points the gateway at another API root, e.g. a GitHub
// Enterprise instance
func (g *HTTPGitHubGateway) WithBaseURL(apiURL string) *HTTPGitHubGateway {
	if apiURL != "" {
		g.apiURL = apiURL
	}
	return g
}

// githubLicenseResponse is the body of GET /repos/{owner}/{repo}/license
type githubLicenseResponse struct {
	Name     string             `json:"name"`
	Path     string             `json:"path"`
	Content  *string            `json:"content"`
	Encoding string             `json:"encoding"`
	License  *githubLicenseInfo `json:"license"`
}

type githubLicenseInfo struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
	URL    string `json:"url"`
}

// checkRateLimit returns an error when the rate limit headers say no requests remain
func checkRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}

	remainingInt, err := strconv.Atoi(remaining)
	if err != nil || remainingInt > 0 {
		return nil
	}

	if resetUnix, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		resetAt := time.Unix(resetUnix, 0)
		return fmt.Errorf("GitHub API rate limit exceeded (0 remaining), resets at %s", resetAt.Format(time.RFC3339))
	}
	return fmt.Errorf("GitHub API rate limit exceeded (0 remaining)")
}

// FetchRepositoryLicense retrieves the license GitHub detected for owner/repo.
// A non-success status means the repository has no recognizable license and
// yields (nil, nil).
func (g *HTTPGitHubGateway) FetchRepositoryLicense(ctx context.Context, owner, repo string) (*entities.LicenseArtifact, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/license", strings.TrimRight(g.apiURL, "/"), url.PathEscape(owner), url.PathEscape(repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", g.userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GitHub API request failed for %s/%s: %w", owner, repo, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// a 2xx with zero remaining is still a valid answer
		if err := checkRateLimit(resp); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var body githubLicenseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLicenseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub API response for %s/%s: %w", owner, repo, err)
	}

	if body.Content == nil || body.Encoding != "base64" {
		return nil, fmt.Errorf("%w for %s/%s (encoding %q)", ErrUnexpectedResponse, owner, repo, body.Encoding)
	}

	encoded := strings.NewReplacer("\n", "", "\r", "").Replace(*body.Content)
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 license content for %s/%s: %w", owner, repo, err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	artifact := &entities.LicenseArtifact{
		Content:  content,
		FileName: body.Name,
	}
	if artifact.FileName == "" {
		artifact.FileName = "LICENSE"
	}
	if body.License != nil {
		artifact.SPDXID = body.License.SPDXID
		artifact.LicenseName = body.License.Name
	}

	return artifact, nil
}
