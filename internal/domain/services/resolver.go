// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces/gateways"
)

// errNotApplicable marks a strategy that has no input for this component
var errNotApplicable = errors.New("strategy not applicable")

// strategy is one license source tried by the resolver
type strategy struct {
	source entities.LicenseSource
	fetch  func(ctx context.Context, c entities.Component) (*entities.LicenseArtifact, error)
}

// LicenseResolver resolves the license of a single component by trying each
// source in a fixed order. The first non-empty artifact wins.
type LicenseResolver struct {
	hosting    gateways.HostingLicenseGateway
	urls       gateways.LicenseURLGateway
	registry   gateways.RegistryArchiveGateway
	logger     interfaces.Logger
	strategies []strategy
}

// NewLicenseResolver creates a resolver. hosting may be nil, in which case the
// repository strategy is skipped.
func NewLicenseResolver(
	hosting gateways.HostingLicenseGateway,
	urls gateways.LicenseURLGateway,
	registry gateways.RegistryArchiveGateway,
	logger interfaces.Logger,
) *LicenseResolver {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	r := &LicenseResolver{
		hosting:  hosting,
		urls:     urls,
		registry: registry,
		logger:   logger,
	}
	r.strategies = []strategy{
		{source: entities.SourceGitHub, fetch: r.fromRepository},
		{source: entities.SourceURL, fetch: r.fromLicenseURL},
		{source: entities.SourcePackageURL, fetch: r.fromPackageURL},
		{source: entities.SourceRegistry, fetch: r.fromRegistry},
	}
	return r
}

// Resolve returns a successful resolution for the first strategy yielding a
// license, or a failed resolution with NoLicenseFoundMessage.
func (r *LicenseResolver) Resolve(ctx context.Context, c entities.Component) *entities.Resolution {
	log := r.logger.With(interfaces.F("component", c.Name), interfaces.F("version", c.Version))
	log.Info("Attempting to download license")

	var errs *multierror.Error
	for _, s := range r.strategies {
		artifact, err := r.run(ctx, s, c)
		switch {
		case errors.Is(err, errNotApplicable):
			continue
		case err != nil:
			log.Warn("License source failed", interfaces.F("source", s.source), interfaces.F("error", err))
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", s.source, err))
			continue
		case artifact.IsEmpty():
			log.Debug("No license from source", interfaces.F("source", s.source))
			continue
		}

		log.Info("Downloaded license",
			interfaces.F("source", s.source),
			interfaces.F("file", artifact.FileName),
			interfaces.F("spdx", artifact.SPDXID))
		return entities.NewFoundResolution(c, s.source, artifact)
	}

	if errs != nil {
		log.Debug("All license sources exhausted", interfaces.F("errors", errs.Error()))
	}
	log.Warn("Could not download license")
	return entities.NewFailedResolution(c, entities.NoLicenseFoundMessage)
}

// run invokes one strategy, converting a panic into an error so a broken
// source never takes down the fan-out
func (r *LicenseResolver) run(ctx context.Context, s strategy, c entities.Component) (artifact *entities.LicenseArtifact, err error) {
	defer func() {
		if p := recover(); p != nil {
			artifact = nil
			err = fmt.Errorf("recovered from panic: %v", p)
		}
	}()
	return s.fetch(ctx, c)
}

func (r *LicenseResolver) fromRepository(ctx context.Context, c entities.Component) (*entities.LicenseArtifact, error) {
	if r.hosting == nil || c.RepositoryURL == "" {
		return nil, errNotApplicable
	}

	ref, err := ParseRepositoryURL(c.RepositoryURL)
	if err != nil {
		r.logger.Debug("Not a GitHub repository URL", interfaces.F("url", c.RepositoryURL), interfaces.F("reason", err))
		return nil, errNotApplicable
	}

	return r.hosting.FetchRepositoryLicense(ctx, ref.Owner, ref.Repo)
}

func (r *LicenseResolver) fromLicenseURL(ctx context.Context, c entities.Component) (*entities.LicenseArtifact, error) {
	if r.urls == nil || c.LicenseURL == "" {
		return nil, errNotApplicable
	}
	return r.urls.FetchLicenseURL(ctx, c.LicenseURL)
}

func (r *LicenseResolver) fromPackageURL(ctx context.Context, c entities.Component) (*entities.LicenseArtifact, error) {
	if r.registry == nil || c.PackageURL == "" {
		return nil, errNotApplicable
	}

	name, version, err := ParsePackageURL(c.PackageURL)
	if err != nil {
		r.logger.Debug("Unusable package URL", interfaces.F("purl", c.PackageURL), interfaces.F("reason", err))
		return nil, errNotApplicable
	}

	return r.registry.FetchPackageLicense(ctx, name, version)
}

func (r *LicenseResolver) fromRegistry(ctx context.Context, c entities.Component) (*entities.LicenseArtifact, error) {
	if r.registry == nil {
		return nil, errNotApplicable
	}
	return r.registry.FetchPackageLicense(ctx, c.Name, c.Version)
}
