package entities

import (
	"fmt"
	"time"
)

// OutcomeStatus is the per-component status recorded in a run summary
type OutcomeStatus string

const (
	// StatusDownloaded means a license was resolved and persisted
	StatusDownloaded OutcomeStatus = "downloaded"
	// StatusFailed means no license was resolved or it could not be persisted
	StatusFailed OutcomeStatus = "failed"
	// StatusExcluded means the component matched an exclusion pattern
	StatusExcluded OutcomeStatus = "excluded"
)

// ComponentOutcome records what happened to one component during a run
type ComponentOutcome struct {
	Name     string
	Version  string
	Status   OutcomeStatus
	FilePath string
	Source   LicenseSource
	SPDXID   string
	Error    string
}

// RunSummary aggregates the results of one license download run
type RunSummary struct {
	RunID      string
	SBOMPath   string
	StartedAt  time.Time
	FinishedAt time.Time

	TotalComponents     int
	ExcludedPackages    int
	SuccessfulDownloads int
	FailedDownloads     int
	FailedComponents    []string // "{name}: {error}", order not guaranteed
	FatalError          string

	TotalFilesCreated int
	TotalSizeBytes    int64
	OutputDirectory   string
	ManifestPath      string

	Outcomes []ComponentOutcome
}

// HasErrors reports whether the run should exit non-zero
func (s *RunSummary) HasErrors() bool {
	return s.FailedDownloads > 0 || s.FatalError != ""
}

// AddFailure records a failed component
func (s *RunSummary) AddFailure(name, message string) {
	s.FailedDownloads++
	s.FailedComponents = append(s.FailedComponents, fmt.Sprintf("%s: %s", name, message))
}

// TotalSizeFormatted returns the output size in human-readable form
func (s *RunSummary) TotalSizeFormatted() string {
	return FormatBytes(s.TotalSizeBytes)
}
