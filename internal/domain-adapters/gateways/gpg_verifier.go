package gateways

import (
	"fmt"
	"path/filepath"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/gpg"
)

// ManifestSignatureVerifier checks the detached signature of a license manifest
type ManifestSignatureVerifier struct {
	verifier *gpg.Verifier
}

// NewManifestSignatureVerifier creates a verifier trusting the public key at keyPath
func NewManifestSignatureVerifier(keyPath string) (*ManifestSignatureVerifier, error) {
	v := gpg.NewVerifier()
	if err := v.ImportKeyFromFile(keyPath); err != nil {
		return nil, fmt.Errorf("failed to import GPG key from file: %w", err)
	}
	return &ManifestSignatureVerifier{verifier: v}, nil
}

// VerifyDirectory verifies MANIFEST.sha256.asc over MANIFEST.sha256 in dir
func (m *ManifestSignatureVerifier) VerifyDirectory(dir string) error {
	manifestPath := filepath.Join(dir, entities.ManifestFileName)
	sigPath := filepath.Join(dir, entities.ManifestSignatureFileName)
	if err := m.verifier.VerifySignatureFromFile(manifestPath, sigPath); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}
