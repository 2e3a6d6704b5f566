package gateways

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

const (
	// DefaultNuGetFlatContainerURL is the nuget.org package content root
	DefaultNuGetFlatContainerURL = "https://api.nuget.org/v3-flatcontainer"

	// maxPackageBytes caps downloaded package archives
	maxPackageBytes = 512 * 1024 * 1024
)

// LicenseFileNames lists conventional license file names in priority order.
// Comparison is case-insensitive, so casing variants are not repeated.
var LicenseFileNames = []string{
	"LICENSE",
	"LICENSE.txt",
	"LICENSE.md",
	"LICENCE",
	"LICENCE.txt",
	"LICENCE.md",
	"COPYING",
	"COPYING.txt",
	"LICENSE-MIT",
	"LICENSE-APACHE",
}

// NuGetGateway extracts license files from .nupkg archives on the NuGet flat container
type NuGetGateway struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewNuGetGateway creates a new NuGet archive gateway
func NewNuGetGateway(userAgent string, timeout time.Duration) *NuGetGateway {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &NuGetGateway{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultNuGetFlatContainerURL,
		userAgent:  userAgent,
	}
}

// WithBaseURL points the gateway at another flat container, e.g. a private feed
func (g *NuGetGateway) WithBaseURL(baseURL string) *NuGetGateway {
	if baseURL != "" {
		g.baseURL = baseURL
	}
	return g
}

// NormalizeVersion strips a leading v/V and any build metadata ("+...")
func NormalizeVersion(version string) string {
	version = strings.TrimLeft(version, "vV")
	if i := strings.Index(version, "+"); i > 0 {
		version = version[:i]
	}
	return version
}

// BuildPackageURL returns the flat container download URL of name@version
func (g *NuGetGateway) BuildPackageURL(name, version string) string {
	id := strings.ToLower(name)
	ver := strings.ToLower(NormalizeVersion(version))
	return fmt.Sprintf("%s/%s/%s/%s.%s.nupkg", strings.TrimRight(g.baseURL, "/"), id, ver, id, ver)
}

// FetchPackageLicense downloads the package archive and returns the first
// license file found. A missing package or missing license yields (nil, nil).
func (g *NuGetGateway) FetchPackageLicense(ctx context.Context, name, version string) (*entities.LicenseArtifact, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(version) == "" {
		return nil, nil
	}

	data, err := g.download(ctx, g.BuildPackageURL(name, version))
	if err != nil || data == nil {
		return nil, err
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open package archive %s %s: %w", name, version, err)
	}

	entry := FindLicenseEntry(archive.File)
	if entry == nil {
		return nil, nil
	}

	content, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from package %s %s: %w", entry.Name, name, version, err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	return &entities.LicenseArtifact{
		Content:  content,
		FileName: path.Base(entry.Name),
	}, nil
}

// download fetches url into memory; non-success statuses return (nil, nil)
func (g *NuGetGateway) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPackageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read package archive: %w", err)
	}
	return data, nil
}

// FindLicenseEntry returns the archive entry matching the highest-priority
// license file name. For each candidate name every entry is scanned, in
// archive order, before moving to the next candidate. Entries nested in
// directories match on their final path segment.
func FindLicenseEntry(files []*zip.File) *zip.File {
	for _, candidate := range LicenseFileNames {
		for _, f := range files {
			if f.FileInfo().IsDir() {
				continue
			}
			if strings.EqualFold(f.Name, candidate) || hasSuffixFold(f.Name, "/"+candidate) {
				return f
			}
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on read-only entry
	defer rc.Close()

	return io.ReadAll(io.LimitReader(rc, maxLicenseBytes))
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
