package entities

// LicenseSource identifies which resolution strategy produced a license
type LicenseSource string

const (
	// SourceGitHub is the hosting provider license API
	SourceGitHub LicenseSource = "github"
	// SourceURL is a direct license URL declared in the SBOM
	SourceURL LicenseSource = "url"
	// SourcePackageURL is the registry archive located through the component purl
	SourcePackageURL LicenseSource = "purl-registry"
	// SourceRegistry is the registry archive located through the component name and version
	SourceRegistry LicenseSource = "registry"
)

// NoLicenseFoundMessage is the failure message once every strategy came back empty
const NoLicenseFoundMessage = "No license file found"

// SaveFailedMessage is the failure message when a resolved license could not be persisted
const SaveFailedMessage = "Failed to save file"

// LicenseArtifact is a license file retrieved from one source
type LicenseArtifact struct {
	Content     []byte
	FileName    string // suggested file name, e.g. "LICENSE.md"
	SPDXID      string // optional
	LicenseName string // optional display name
}

// IsEmpty reports whether the artifact carries no payload; an empty payload
// counts as "not found"
func (a *LicenseArtifact) IsEmpty() bool {
	return a == nil || len(a.Content) == 0
}

// Resolution is the outcome of resolving the license of one component
type Resolution struct {
	Success     bool
	Component   Component
	Content     []byte        // present iff Success
	FileName    string        // present iff Success
	Source      LicenseSource // present iff Success
	SPDXID      string
	LicenseName string
	Error       string // present iff !Success
}

// NewFoundResolution builds a successful resolution from an artifact
func NewFoundResolution(c Component, source LicenseSource, a *LicenseArtifact) *Resolution {
	return &Resolution{
		Success:     true,
		Component:   c,
		Content:     a.Content,
		FileName:    a.FileName,
		Source:      source,
		SPDXID:      a.SPDXID,
		LicenseName: a.LicenseName,
	}
}

// NewFailedResolution builds a failed resolution with the given message
func NewFailedResolution(c Component, message string) *Resolution {
	return &Resolution{
		Success:   false,
		Component: c,
		Error:     message,
	}
}
