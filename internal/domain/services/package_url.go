package services

import (
	"fmt"

	"github.com/package-url/packageurl-go"
)

// ParsePackageURL extracts the package name and version from a purl such as
// "pkg:nuget/Newtonsoft.Json@13.0.3". Both parts must be present.
func ParsePackageURL(purl string) (name, version string, err error) {
	if purl == "" {
		return "", "", fmt.Errorf("empty package URL")
	}

	parsed, err := packageurl.FromString(purl)
	if err != nil {
		return "", "", fmt.Errorf("invalid package URL %q: %w", purl, err)
	}

	if parsed.Name == "" || parsed.Version == "" {
		return "", "", fmt.Errorf("package URL %q must carry a name and a version", purl)
	}

	return parsed.Name, parsed.Version, nil
}
