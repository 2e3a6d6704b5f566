package repositories

import (
	"context"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

// LicenseStore persists resolved license files
type LicenseStore interface {
	// Save writes the resolution payload and returns the file path
	Save(ctx context.Context, resolution *entities.Resolution) (string, error)

	// Stats describes the output directory
	Stats() (entities.StoreStats, error)
}
