// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"
	"errors"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

var (
	// ErrSBOMNotFound is returned when the SBOM path does not exist
	ErrSBOMNotFound = errors.New("SBOM file not found")

	// ErrUnsupportedFormat is returned when the document is neither CycloneDX nor SPDX
	ErrUnsupportedFormat = errors.New("unknown SBOM format, supported formats: CycloneDX, SPDX")
)

// SBOMRepository reads the canonical component list out of an SBOM document
type SBOMRepository interface {
	// ReadComponents parses the SBOM at path
	ReadComponents(ctx context.Context, path string) ([]entities.Component, error)
}
