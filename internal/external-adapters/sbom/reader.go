// Package sbom reads CycloneDX and SPDX JSON documents into domain components.
package sbom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces/repositories"
)

// Format is a recognized SBOM dialect
type Format string

const (
	// FormatCycloneDX is CycloneDX JSON
	FormatCycloneDX Format = "CycloneDX"
	// FormatSPDX is SPDX 2.x JSON
	FormatSPDX Format = "SPDX"
)

// Reader implements repositories.SBOMRepository for JSON SBOM files
type Reader struct {
	logger interfaces.Logger
}

// NewReader creates a new SBOM reader
func NewReader(logger interfaces.Logger) *Reader {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Reader{logger: logger}
}

// ReadComponents reads the SBOM at path and returns its components
func (r *Reader) ReadComponents(_ context.Context, path string) ([]entities.Component, error) {
	//nolint:gosec // G304: path is the user-provided SBOM
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrSBOMNotFound, path)
		}
		return nil, fmt.Errorf("failed to read SBOM %s: %w", path, err)
	}

	r.logger.Info("Reading SBOM file", interfaces.F("path", path))
	return r.Parse(data)
}

// Parse detects the document format and extracts components
func (r *Reader) Parse(data []byte) ([]entities.Component, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Detected SBOM format", interfaces.F("format", format))

	var components []entities.Component
	switch format {
	case FormatCycloneDX:
		components, err = parseCycloneDX(data)
	case FormatSPDX:
		components, err = parseSPDX(data)
	}
	if err != nil {
		return nil, err
	}

	if len(components) == 0 {
		r.logger.Warn("No components found in SBOM", interfaces.F("format", format))
	} else {
		r.logger.Info("Parsed components", interfaces.F("format", format), interfaces.F("count", len(components)))
	}
	return components, nil
}

// DetectFormat recognizes a document by its characteristic properties
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.Contains(data, []byte(`"bomFormat"`)) || bytes.Contains(data, []byte(`"CycloneDX"`)):
		return FormatCycloneDX, nil
	case bytes.Contains(data, []byte(`"spdxVersion"`)) || bytes.Contains(data, []byte(`"SPDX"`)):
		return FormatSPDX, nil
	default:
		return "", repositories.ErrUnsupportedFormat
	}
}
