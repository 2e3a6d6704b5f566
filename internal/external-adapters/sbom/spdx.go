package sbom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

const (
	spdxNoAssertion = "NOASSERTION"
	spdxNone        = "NONE"
)

// spdxDocument is the subset of an SPDX 2.x JSON document needed to locate licenses
type spdxDocument struct {
	SPDXVersion string        `json:"spdxVersion"`
	Name        string        `json:"name"`
	Packages    []spdxPackage `json:"packages"`
}

type spdxPackage struct {
	SPDXID           string            `json:"SPDXID"`
	Name             string            `json:"name"`
	VersionInfo      string            `json:"versionInfo"`
	DownloadLocation string            `json:"downloadLocation"`
	Homepage         string            `json:"homepage"`
	LicenseConcluded string            `json:"licenseConcluded"`
	LicenseDeclared  string            `json:"licenseDeclared"`
	ExternalRefs     []spdxExternalRef `json:"externalRefs"`
}

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

func parseSPDX(data []byte) ([]entities.Component, error) {
	var doc spdxDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse SPDX SBOM: %w", err)
	}

	components := make([]entities.Component, 0, len(doc.Packages))
	for _, p := range doc.Packages {
		if p.Name == "" {
			continue
		}
		components = append(components, convertSPDXPackage(p))
	}
	return components, nil
}

func convertSPDXPackage(p spdxPackage) entities.Component {
	component := entities.NewComponent(p.Name, p.VersionInfo)

	for _, l := range []string{p.LicenseConcluded, p.LicenseDeclared} {
		if isAssertion(l) && !containsString(component.Licenses, l) {
			component.Licenses = append(component.Licenses, l)
		}
	}

	for _, ref := range p.ExternalRefs {
		if strings.EqualFold(ref.ReferenceType, "purl") && component.PackageURL == "" {
			component.PackageURL = ref.ReferenceLocator
		}
	}

	if isAssertion(p.DownloadLocation) {
		component.RepositoryURL = repositoryFromDownloadLocation(p.DownloadLocation)
	}

	return component
}

// repositoryFromDownloadLocation turns an SPDX VCS locator such as
// "git+https://github.com/o/r.git@v1.2#sub/dir" into the bare repository URL.
func repositoryFromDownloadLocation(location string) string {
	repo := strings.TrimPrefix(location, "git+")
	if i := strings.IndexByte(repo, '#'); i >= 0 {
		repo = repo[:i]
	}
	// an '@' before the last '/' belongs to user info or git@host:
	if at := strings.LastIndexByte(repo, '@'); at > strings.LastIndexByte(repo, '/') {
		repo = repo[:at]
	}
	return repo
}

// isAssertion reports whether an SPDX field carries a real value
func isAssertion(value string) bool {
	return value != "" && value != spdxNoAssertion && value != spdxNone
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
