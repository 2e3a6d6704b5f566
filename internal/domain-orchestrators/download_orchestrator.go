// Package orchestrators coordinates the license download workflow across domain services.
package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces/repositories"
)

// DefaultConcurrency is the number of components resolved in parallel
const DefaultConcurrency = 8

// LicenseResolver resolves the license of one component
type LicenseResolver interface {
	Resolve(ctx context.Context, c entities.Component) *entities.Resolution
}

// ExclusionMatcher decides whether a component is skipped
type ExclusionMatcher interface {
	IsExcluded(name string) bool
}

// ManifestWriter writes a checksum manifest of the output directory
type ManifestWriter interface {
	WriteManifest(ctx context.Context, dir string) (string, error)
}

// DownloadOrchestrator reads an SBOM, resolves every eligible component
// concurrently and persists the licenses it finds
type DownloadOrchestrator struct {
	sbomRepo    repositories.SBOMRepository
	resolver    LicenseResolver
	store       repositories.LicenseStore
	exclusions  ExclusionMatcher
	manifest    ManifestWriter
	logger      interfaces.Logger
	concurrency int
}

// DownloadOrchestratorConfig holds configuration for the orchestrator
type DownloadOrchestratorConfig struct {
	Concurrency int
	// Manifest is optional; when set it runs after the output statistics are taken
	Manifest ManifestWriter
}

// NewDownloadOrchestrator creates a new download orchestrator
func NewDownloadOrchestrator(
	sbomRepo repositories.SBOMRepository,
	resolver LicenseResolver,
	store repositories.LicenseStore,
	exclusions ExclusionMatcher,
	logger interfaces.Logger,
	config DownloadOrchestratorConfig,
) *DownloadOrchestrator {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &DownloadOrchestrator{
		sbomRepo:    sbomRepo,
		resolver:    resolver,
		store:       store,
		exclusions:  exclusions,
		manifest:    config.Manifest,
		logger:      logger,
		concurrency: concurrency,
	}
}

// componentResult is written by exactly one task, indexed by component position
type componentResult struct {
	outcome entities.ComponentOutcome
	success bool
}

// Execute runs the complete workflow for the SBOM at sbomPath. A failure to
// read the SBOM is recorded as the summary's fatal error.
func (o *DownloadOrchestrator) Execute(ctx context.Context, sbomPath string) *entities.RunSummary {
	o.logger.Info("Starting license download", interfaces.F("sbom", sbomPath))

	components, err := o.sbomRepo.ReadComponents(ctx, sbomPath)
	if err != nil {
		o.logger.Error("Fatal error during license download process", interfaces.F("error", err))
		summary := newSummary(sbomPath)
		summary.FatalError = err.Error()
		summary.FinishedAt = time.Now()
		return summary
	}

	summary := o.Run(ctx, components)
	summary.SBOMPath = sbomPath
	return summary
}

// Run resolves the given components and aggregates a summary
func (o *DownloadOrchestrator) Run(ctx context.Context, components []entities.Component) *entities.RunSummary {
	summary := newSummary("")
	summary.TotalComponents = len(components)

	if len(components) == 0 {
		o.logger.Warn("No components found in SBOM")
	}

	eligible := make([]entities.Component, 0, len(components))
	for _, c := range components {
		if o.exclusions != nil && o.exclusions.IsExcluded(c.Name) {
			o.logger.Info("Skipping excluded package", interfaces.F("component", c.Name))
			summary.ExcludedPackages++
			summary.Outcomes = append(summary.Outcomes, entities.ComponentOutcome{
				Name:    c.Name,
				Version: c.Version,
				Status:  entities.StatusExcluded,
			})
			continue
		}
		eligible = append(eligible, c)
	}

	o.logger.Info("Downloading licenses",
		interfaces.F("eligible", len(eligible)),
		interfaces.F("excluded", summary.ExcludedPackages))

	results := make([]componentResult, len(eligible))

	// Tasks never return errors: a failing component must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, c := range eligible {
		i, c := i, c
		g.Go(func() error {
			results[i] = o.process(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		summary.Outcomes = append(summary.Outcomes, r.outcome)
		if r.success {
			summary.SuccessfulDownloads++
			continue
		}
		summary.AddFailure(r.outcome.Name, r.outcome.Error)
	}

	o.collectStats(ctx, summary)
	summary.FinishedAt = time.Now()
	o.logSummary(summary)

	return summary
}

// process resolves and persists one component
func (o *DownloadOrchestrator) process(ctx context.Context, c entities.Component) (result componentResult) {
	result.outcome = entities.ComponentOutcome{Name: c.Name, Version: c.Version, Status: entities.StatusFailed}

	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("Error processing component", interfaces.F("component", c.Name), interfaces.F("panic", p))
			result.success = false
			result.outcome.Status = entities.StatusFailed
			result.outcome.Error = fmt.Sprint(p)
		}
	}()

	resolution := o.resolver.Resolve(ctx, c)
	if resolution == nil || !resolution.Success {
		result.outcome.Error = entities.NoLicenseFoundMessage
		if resolution != nil && resolution.Error != "" {
			result.outcome.Error = resolution.Error
		}
		return result
	}

	result.outcome.Source = resolution.Source
	result.outcome.SPDXID = resolution.SPDXID

	path, err := o.store.Save(ctx, resolution)
	if err != nil || path == "" {
		o.logger.Warn("Failed to save license file", interfaces.F("component", c.Name), interfaces.F("error", err))
		result.outcome.Error = entities.SaveFailedMessage
		return result
	}

	result.success = true
	result.outcome.Status = entities.StatusDownloaded
	result.outcome.FilePath = path
	return result
}

// collectStats reads the output directory once every task has finished
func (o *DownloadOrchestrator) collectStats(ctx context.Context, summary *entities.RunSummary) {
	stats, err := o.store.Stats()
	if err != nil {
		o.logger.Warn("Failed to read output statistics", interfaces.F("error", err))
		return
	}
	summary.TotalFilesCreated = stats.TotalFiles
	summary.TotalSizeBytes = stats.TotalSizeBytes
	summary.OutputDirectory = stats.OutputDirectory

	if o.manifest == nil || stats.OutputDirectory == "" || stats.TotalFiles == 0 {
		return
	}
	manifestPath, err := o.manifest.WriteManifest(ctx, stats.OutputDirectory)
	if err != nil {
		o.logger.Warn("Failed to write license manifest", interfaces.F("error", err))
		return
	}
	summary.ManifestPath = manifestPath
}

func (o *DownloadOrchestrator) logSummary(summary *entities.RunSummary) {
	o.logger.Info("Download process complete",
		interfaces.F("successful", fmt.Sprintf("%d/%d", summary.SuccessfulDownloads, summary.TotalComponents)),
		interfaces.F("failed", fmt.Sprintf("%d/%d", summary.FailedDownloads, summary.TotalComponents)),
		interfaces.F("excluded", summary.ExcludedPackages),
		interfaces.F("files", summary.TotalFilesCreated),
		interfaces.F("size", summary.TotalSizeFormatted()))

	for _, failed := range summary.FailedComponents {
		o.logger.Warn("Failed component", interfaces.F("detail", failed))
	}
}

func newSummary(sbomPath string) *entities.RunSummary {
	return &entities.RunSummary{
		RunID:     uuid.NewString(),
		SBOMPath:  sbomPath,
		StartedAt: time.Now(),
	}
}
