package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

// defaultLicenseFileName is used when a URL carries no usable file name
const defaultLicenseFileName = "LICENSE"

// URLFetcher downloads license documents from direct URLs
type URLFetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewURLFetcher creates a new URL fetcher
func NewURLFetcher(userAgent string, timeout time.Duration) *URLFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &URLFetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// FetchLicenseURL downloads the license at rawURL. Non-success statuses yield
// (nil, nil).
func (f *URLFetcher) FetchLicenseURL(ctx context.Context, rawURL string) (*entities.LicenseArtifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxLicenseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	return &entities.LicenseArtifact{
		Content:  content,
		FileName: FileNameFromURL(rawURL),
	}, nil
}

// FileNameFromURL returns the last path segment of rawURL, or "LICENSE" when
// there is none
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultLicenseFileName
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultLicenseFileName
	}
	return name
}
