package gateways

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/gpg"
)

// ManifestWriter writes a sha256sum-compatible manifest of the output
// directory and optionally signs it
type ManifestWriter struct {
	checksums *ChecksumVerifier
	signer    *gpg.Signer
}

// NewManifestWriter creates a manifest writer; signer may be nil
func NewManifestWriter(signer *gpg.Signer) *ManifestWriter {
	return &ManifestWriter{
		checksums: NewChecksumVerifier(),
		signer:    signer,
	}
}

// WriteManifest hashes every regular file in dir (manifest files excluded) and
// writes entities.ManifestFileName. Returns the manifest path.
func (w *ManifestWriter) WriteManifest(_ context.Context, dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	manifest := entities.Manifest{}
	for _, f := range files {
		if !f.Type().IsRegular() || entities.IsManifestFile(f.Name()) {
			continue
		}
		sum, err := w.checksums.CalculateChecksum(filepath.Join(dir, f.Name()))
		if err != nil {
			return "", err
		}
		manifest.Entries = append(manifest.Entries, entities.ManifestEntry{FileName: f.Name(), SHA256: sum})
	}
	sort.Slice(manifest.Entries, func(i, j int) bool {
		return manifest.Entries[i].FileName < manifest.Entries[j].FileName
	})

	var b strings.Builder
	for _, e := range manifest.Entries {
		fmt.Fprintf(&b, "%s  %s\n", e.SHA256, e.FileName)
	}

	manifestPath := filepath.Join(dir, entities.ManifestFileName)
	if err := os.WriteFile(manifestPath, []byte(b.String()), 0644); err != nil { //nolint:gosec // G306: manifest is public
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	if w.signer != nil {
		sigPath := filepath.Join(dir, entities.ManifestSignatureFileName)
		if err := w.signer.SignFile(manifestPath, sigPath); err != nil {
			return "", err
		}
	}

	return manifestPath, nil
}

// ReadManifest parses a manifest written by WriteManifest
func ReadManifest(manifestPath string) (*entities.Manifest, error) {
	//nolint:gosec // G304: manifestPath is user-provided for verification
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	manifest := &entities.Manifest{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		sum, name, ok := strings.Cut(text, "  ")
		if !ok || len(sum) != 64 || name == "" {
			return nil, fmt.Errorf("malformed manifest line %d: %q", line, text)
		}
		if !isPlainFileName(name) {
			return nil, fmt.Errorf("manifest line %d names a file outside the directory: %q", line, name)
		}
		manifest.Entries = append(manifest.Entries, entities.ManifestEntry{FileName: name, SHA256: sum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return manifest, nil
}

// isPlainFileName reports whether name refers to an entry directly inside the
// manifest's directory
func isPlainFileName(name string) bool {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

// VerifyManifest re-hashes every file listed in dir's manifest
func (w *ManifestWriter) VerifyManifest(ctx context.Context, dir string) (*entities.Manifest, error) {
	manifest, err := ReadManifest(filepath.Join(dir, entities.ManifestFileName))
	if err != nil {
		return nil, err
	}
	for _, e := range manifest.Entries {
		if err := w.checksums.VerifyChecksum(ctx, filepath.Join(dir, e.FileName), e.SHA256); err != nil {
			return manifest, err
		}
	}
	return manifest, nil
}
