package sbom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

// cdxBOM is the subset of a CycloneDX document needed to locate licenses
type cdxBOM struct {
	BOMFormat   string         `json:"bomFormat"`
	SpecVersion string         `json:"specVersion"`
	Components  []cdxComponent `json:"components"`
}

type cdxComponent struct {
	Name               string                 `json:"name"`
	Version            string                 `json:"version"`
	Purl               string                 `json:"purl"`
	Licenses           []cdxLicenseChoice     `json:"licenses"`
	ExternalReferences []cdxExternalReference `json:"externalReferences"`
	Components         []cdxComponent         `json:"components"`
}

type cdxLicenseChoice struct {
	License    *cdxLicense `json:"license"`
	Expression string      `json:"expression"`
}

type cdxLicense struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type cdxExternalReference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func parseCycloneDX(data []byte) ([]entities.Component, error) {
	var bom cdxBOM
	if err := json.Unmarshal(data, &bom); err != nil {
		return nil, fmt.Errorf("failed to parse CycloneDX SBOM: %w", err)
	}

	components := make([]entities.Component, 0, len(bom.Components))
	var walk func(list []cdxComponent)
	walk = func(list []cdxComponent) {
		for _, c := range list {
			if c.Name != "" {
				components = append(components, convertCycloneDXComponent(c))
			}
			walk(c.Components)
		}
	}
	walk(bom.Components)

	return components, nil
}

func convertCycloneDXComponent(c cdxComponent) entities.Component {
	component := entities.NewComponent(c.Name, c.Version)
	component.PackageURL = c.Purl

	for _, choice := range c.Licenses {
		switch {
		case choice.License != nil && choice.License.ID != "":
			component.Licenses = append(component.Licenses, choice.License.ID)
		case choice.License != nil && choice.License.Name != "":
			component.Licenses = append(component.Licenses, choice.License.Name)
		case choice.Expression != "":
			component.Licenses = append(component.Licenses, choice.Expression)
		}
		if choice.License != nil && choice.License.URL != "" {
			component.LicenseURL = choice.License.URL
		}
	}

	// The first "license" reference overrides a URL found on the license itself.
	if ref := firstReference(c.ExternalReferences, "license"); ref != "" {
		component.LicenseURL = ref
	}
	if ref := firstReference(c.ExternalReferences, "vcs"); ref != "" {
		component.RepositoryURL = ref
	}

	return component
}

func firstReference(refs []cdxExternalReference, refType string) string {
	for _, r := range refs {
		if strings.EqualFold(r.Type, refType) && r.URL != "" {
			return r.URL
		}
	}
	return ""
}
