// Package filestore persists license files to a local output directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces"
)

// DefaultFileExtension is used when the artifact name carries no extension
const DefaultFileExtension = ".txt"

const invalidFileNameChars = `<>:"/\|?*`

// Options configures a Store
type Options struct {
	OutputDirectory        string
	CreateOutputDirectory  bool
	OverwriteExistingFiles bool
	DefaultFileExtension   string
}

// Store implements repositories.LicenseStore on the local filesystem
type Store struct {
	opts   Options
	logger interfaces.Logger
}

// NewStore creates a store, creating the output directory when configured to
func NewStore(opts Options, logger interfaces.Logger) (*Store, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	if opts.DefaultFileExtension == "" {
		opts.DefaultFileExtension = DefaultFileExtension
	}
	if opts.OutputDirectory == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	if opts.CreateOutputDirectory {
		if err := os.MkdirAll(opts.OutputDirectory, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", opts.OutputDirectory, err)
		}
	}

	return &Store{opts: opts, logger: logger}, nil
}

// Save writes the resolution payload and returns the file path. An existing
// file is kept as-is unless overwriting is enabled.
func (s *Store) Save(_ context.Context, resolution *entities.Resolution) (string, error) {
	if resolution == nil || !resolution.Success || len(resolution.Content) == 0 {
		return "", fmt.Errorf("nothing to save")
	}

	name := BuildFileName(resolution.Component, resolution.FileName, s.opts.DefaultFileExtension)
	path := filepath.Join(s.opts.OutputDirectory, name)

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if s.opts.OverwriteExistingFiles {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	//nolint:gosec // G304: path is built from sanitized components
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.logger.Info("File already exists, skipping", interfaces.F("path", path))
			return path, nil
		}
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.Write(resolution.Content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	s.logger.Info("Saved license file",
		interfaces.F("path", path),
		interfaces.F("bytes", len(resolution.Content)),
	)
	return path, nil
}

// Stats counts the regular license files in the output directory
func (s *Store) Stats() (entities.StoreStats, error) {
	stats := entities.StoreStats{OutputDirectory: s.opts.OutputDirectory}

	entries, err := os.ReadDir(s.opts.OutputDirectory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || entities.IsManifestFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return stats, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		stats.TotalFiles++
		stats.TotalSizeBytes += info.Size()
	}

	return stats, nil
}

// BuildFileName returns "{name}-{version}{ext}", with ext taken from the
// suggested file name when it has one
func BuildFileName(c entities.Component, suggested, defaultExt string) string {
	ext := filepath.Ext(suggested)
	if ext == "" || ext == "." {
		ext = defaultExt
	}
	return SanitizeFileName(c.Name) + "-" + SanitizeFileName(c.Version) + replaceInvalid(ext)
}

// SanitizeFileName replaces characters that are invalid in file names on
// common filesystems and trims leading and trailing dots and spaces
func SanitizeFileName(name string) string {
	sanitized := strings.Trim(replaceInvalid(name), ". ")
	if sanitized == "" {
		return "_"
	}
	return sanitized
}

func replaceInvalid(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(invalidFileNameChars, r) {
			return '_'
		}
		return r
	}, name)
}
