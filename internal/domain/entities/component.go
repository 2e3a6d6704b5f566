// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"strings"
)

// UnknownVersion is used when the SBOM does not declare a component version
const UnknownVersion = "unknown"

// Component represents a third-party package declared in an SBOM
type Component struct {
	Name          string
	Version       string   // defaults to UnknownVersion
	Licenses      []string // declared SPDX ids or expressions, in document order
	LicenseURL    string   // optional direct link to the license text
	PackageURL    string   // optional purl, e.g. pkg:nuget/Newtonsoft.Json@13.0.3
	RepositoryURL string   // optional source repository (VCS) URL
}

// NewComponent creates a component, applying the version default
func NewComponent(name, version string) Component {
	if strings.TrimSpace(version) == "" {
		version = UnknownVersion
	}
	return Component{Name: name, Version: version}
}

// String returns "name@version" followed by the declared licenses, if any
func (c Component) String() string {
	if len(c.Licenses) == 0 {
		return fmt.Sprintf("%s@%s", c.Name, c.Version)
	}
	return fmt.Sprintf("%s@%s - Licenses: %s", c.Name, c.Version, strings.Join(c.Licenses, ", "))
}
