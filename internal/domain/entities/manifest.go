package entities

// ManifestFileName is the checksum manifest written next to the license files
const ManifestFileName = "MANIFEST.sha256"

// ManifestSignatureFileName is the armored detached signature of the manifest
const ManifestSignatureFileName = ManifestFileName + ".asc"

// ManifestEntry is one line of the checksum manifest
type ManifestEntry struct {
	FileName string
	SHA256   string
}

// Manifest lists the checksums of every persisted license file
type Manifest struct {
	Entries []ManifestEntry
}

// IsManifestFile reports whether name is one of the manifest artifacts
func IsManifestFile(name string) bool {
	return name == ManifestFileName || name == ManifestSignatureFileName
}
