// Package yaml writes run reports as YAML documents.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlReport represents the raw YAML structure
type yamlReport struct {
	RunID      string        `yaml:"run_id"`
	SBOMPath   string        `yaml:"sbom_path"`
	StartedAt  string        `yaml:"started_at"`
	FinishedAt string        `yaml:"finished_at"`
	Summary    yamlSummary   `yaml:"summary"`
	Output     yamlOutput    `yaml:"output"`
	Components []yamlOutcome `yaml:"components,omitempty"`
}

type yamlSummary struct {
	TotalComponents     int      `yaml:"total_components"`
	ExcludedPackages    int      `yaml:"excluded_packages"`
	SuccessfulDownloads int      `yaml:"successful_downloads"`
	FailedDownloads     int      `yaml:"failed_downloads"`
	FailedComponents    []string `yaml:"failed_components,omitempty"`
	FatalError          string   `yaml:"fatal_error,omitempty"`
}

type yamlOutput struct {
	Directory  string `yaml:"directory"`
	TotalFiles int    `yaml:"total_files"`
	TotalBytes int64  `yaml:"total_bytes"`
	TotalSize  string `yaml:"total_size"`
	Manifest   string `yaml:"manifest,omitempty"`
}

type yamlOutcome struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Status   string `yaml:"status"`
	Source   string `yaml:"source,omitempty"`
	SPDXID   string `yaml:"spdx_id,omitempty"`
	FilePath string `yaml:"file,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// ReportWriter serializes run summaries to YAML
type ReportWriter struct{}

// NewReportWriter creates a new YAML report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// Marshal renders the summary as a YAML document
func (w *ReportWriter) Marshal(summary *entities.RunSummary) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("summary is nil")
	}

	report := yamlReport{
		RunID:      summary.RunID,
		SBOMPath:   summary.SBOMPath,
		StartedAt:  formatTime(summary.StartedAt),
		FinishedAt: formatTime(summary.FinishedAt),
		Summary: yamlSummary{
			TotalComponents:     summary.TotalComponents,
			ExcludedPackages:    summary.ExcludedPackages,
			SuccessfulDownloads: summary.SuccessfulDownloads,
			FailedDownloads:     summary.FailedDownloads,
			FailedComponents:    summary.FailedComponents,
			FatalError:          summary.FatalError,
		},
		Output: yamlOutput{
			Directory:  summary.OutputDirectory,
			TotalFiles: summary.TotalFilesCreated,
			TotalBytes: summary.TotalSizeBytes,
			TotalSize:  summary.TotalSizeFormatted(),
			Manifest:   summary.ManifestPath,
		},
	}

	for _, o := range summary.Outcomes {
		report.Components = append(report.Components, yamlOutcome{
			Name:     o.Name,
			Version:  o.Version,
			Status:   string(o.Status),
			Source:   string(o.Source),
			SPDXID:   o.SPDXID,
			FilePath: o.FilePath,
			Error:    o.Error,
		})
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// WriteFile writes the report to path, creating parent directories
func (w *ReportWriter) WriteFile(path string, summary *entities.RunSummary) error {
	data, err := w.Marshal(summary)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
