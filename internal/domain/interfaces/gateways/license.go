// Package gateways defines interfaces for license source adapters.
package gateways

import (
	"context"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

// The license gateways share one result convention:
//   - (artifact, nil): a license was found
//   - (nil, nil):      the source legitimately has no license (404, no matching entry)
//   - (nil, err):      transport or format problem; callers treat it as "not found"

// HostingLicenseGateway fetches the license detected by a source hosting provider
type HostingLicenseGateway interface {
	// FetchRepositoryLicense returns the license file of owner/repo
	FetchRepositoryLicense(ctx context.Context, owner, repo string) (*entities.LicenseArtifact, error)
}

// LicenseURLGateway downloads a license from a direct URL
type LicenseURLGateway interface {
	// FetchLicenseURL downloads the document at rawURL
	FetchLicenseURL(ctx context.Context, rawURL string) (*entities.LicenseArtifact, error)
}

// RegistryArchiveGateway extracts a license file from a package registry archive
type RegistryArchiveGateway interface {
	// FetchPackageLicense downloads the package archive and searches it for a license file
	FetchPackageLicense(ctx context.Context, name, version string) (*entities.LicenseArtifact, error)
}
