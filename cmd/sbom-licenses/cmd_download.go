package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ochairo/sbomlicenses/internal/config"
	"github.com/ochairo/sbomlicenses/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/sbomlicenses/internal/domain-orchestrators"
	"github.com/ochairo/sbomlicenses/internal/domain/entities"
	"github.com/ochairo/sbomlicenses/internal/domain/interfaces"
	"github.com/ochairo/sbomlicenses/internal/domain/services"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/filestore"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/gpg"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/logging"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/sbom"
	"github.com/ochairo/sbomlicenses/internal/external-adapters/yaml"
)

const usageExamples = `Usage:
  sbom-licenses [sbom-path] [output-directory]

Examples:
  sbom-licenses ./sbom.json ./licenses
  sbom-licenses ./my-project-sbom.json

Configuration can also be set in sbom-licenses.yaml or SBOM_LICENSES_* environment variables.
`

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "sbom-licenses [sbom-path] [output-directory]",
		Short: "Download license files for every component in an SBOM",
		Long: `sbom-licenses reads a CycloneDX or SPDX JSON SBOM and downloads the license
text of every component into an output directory.

Each component is resolved through the first source that yields a license:
  - GitHub license API for the component's repository URL
  - Direct license URL declared in the SBOM
  - NuGet package archive located through the component's package URL
  - NuGet package archive located through the component's name and version`,
		Example: `  sbom-licenses ./sbom.json ./licenses
  sbom-licenses ./sbom.json ./licenses --exclude 'Microsoft.*' --exclude 'System.*'
  sbom-licenses ./sbom.json --manifest --sign-key private.asc --report report.yaml`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(v, configFile); err != nil {
				return err
			}
			if len(args) > 0 {
				v.Set(config.KeySBOMPath, args[0])
			}
			if len(args) > 1 {
				v.Set(config.KeyOutputDirectory, args[1])
			}

			cfg, err := config.FromViper(v)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDownload(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./sbom-licenses.yaml)")
	flags.StringSlice("exclude", nil, "Package name pattern to skip, '*' and '?' wildcards (repeatable)")
	flags.Bool("overwrite", false, "Overwrite existing license files")
	flags.Int("concurrency", orchestrators.DefaultConcurrency, "Number of components resolved in parallel")
	flags.String("report", "", "Write a YAML run report to this path")
	flags.Bool("manifest", false, "Write MANIFEST.sha256 into the output directory")
	flags.String("sign-key", "", "Armored OpenPGP private key used to sign the manifest")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("github-token", "", "GitHub token (defaults to $GITHUB_TOKEN)")

	bindFlags(v, flags, map[string]string{
		"exclude":      config.KeyExcludedPatterns,
		"overwrite":    config.KeyOverwriteExistingFiles,
		"concurrency":  config.KeyConcurrency,
		"report":       config.KeyReportPath,
		"manifest":     config.KeyManifest,
		"sign-key":     config.KeySigningKeyPath,
		"log-level":    config.KeyLogLevel,
		"github-token": config.KeyGitHubToken,
	})

	cmd.AddCommand(newVerifyCmd(), newVersionCmd())
	return cmd
}

func runDownload(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger := logging.New(stderr, cfg.LogLevel)

	if _, err := os.Stat(cfg.SBOMPath); errors.Is(err, fs.ErrNotExist) {
		logger.Error("SBOM file not found", interfaces.F("path", cfg.SBOMPath))
		fmt.Fprintf(stderr, "SBOM file not found: %s\n\n%s", cfg.SBOMPath, usageExamples)
		return errRunFailed
	}

	printConfiguration(stdout, cfg)

	orchestrator, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	summary := orchestrator.Execute(ctx, cfg.SBOMPath)
	if summary.OutputDirectory == "" {
		summary.OutputDirectory = cfg.OutputDirectory
	}

	if cfg.ReportPath != "" {
		if err := yaml.NewReportWriter().WriteFile(cfg.ReportPath, summary); err != nil {
			logger.Error("Failed to write run report", interfaces.F("path", cfg.ReportPath), interfaces.F("error", err))
		} else {
			logger.Info("Wrote run report", interfaces.F("path", cfg.ReportPath))
		}
	}

	printSummary(stdout, summary)

	if summary.HasErrors() {
		return errRunFailed
	}
	fmt.Fprintln(stdout, "Process completed successfully!")
	return nil
}

// buildOrchestrator wires the gateways, services and adapters for one run
func buildOrchestrator(cfg *config.Config, logger interfaces.Logger) (*orchestrators.DownloadOrchestrator, error) {
	store, err := filestore.NewStore(filestore.Options{
		OutputDirectory:        cfg.OutputDirectory,
		CreateOutputDirectory:  cfg.CreateOutputDirectory,
		OverwriteExistingFiles: cfg.OverwriteExistingFiles,
		DefaultFileExtension:   cfg.DefaultFileExtension,
	}, logger)
	if err != nil {
		return nil, err
	}

	resolver := services.NewLicenseResolver(
		gateways.NewHTTPGitHubGateway(cfg.GitHubToken, cfg.UserAgent, cfg.RequestTimeout).WithBaseURL(cfg.GitHubAPIURL),
		gateways.NewURLFetcher(cfg.UserAgent, cfg.RequestTimeout),
		gateways.NewNuGetGateway(cfg.UserAgent, cfg.RequestTimeout).WithBaseURL(cfg.NuGetBaseURL),
		logger,
	)

	orchestratorConfig := orchestrators.DownloadOrchestratorConfig{Concurrency: cfg.Concurrency}
	if cfg.Manifest {
		var signer *gpg.Signer
		if cfg.SigningKeyPath != "" {
			signer, err = gpg.NewSignerFromFile(cfg.SigningKeyPath, []byte(cfg.SigningKeyPassphrase))
			if err != nil {
				return nil, fmt.Errorf("failed to load signing key: %w", err)
			}
			logger.Info("Manifest will be signed", interfaces.F("key_id", signer.KeyID()))
		}
		orchestratorConfig.Manifest = gateways.NewManifestWriter(signer)
	}

	return orchestrators.NewDownloadOrchestrator(
		sbom.NewReader(logger),
		resolver,
		store,
		services.NewExclusionMatcher(cfg.ExcludedPatterns),
		logger,
		orchestratorConfig,
	), nil
}

func printConfiguration(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "SBOM License Downloader %s\n", version)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  SBOM Path: %s\n", cfg.SBOMPath)
	fmt.Fprintf(w, "  Output Directory: %s\n", cfg.OutputDirectory)
	fmt.Fprintf(w, "  Default Extension: %s\n", cfg.DefaultFileExtension)
	fmt.Fprintf(w, "  Overwrite Existing: %t\n", cfg.OverwriteExistingFiles)
	if len(cfg.ExcludedPatterns) > 0 {
		fmt.Fprintf(w, "  Excluded Patterns: %s\n", strings.Join(cfg.ExcludedPatterns, ", "))
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, summary *entities.RunSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Total Components: %d\n", summary.TotalComponents)
	fmt.Fprintf(w, "  Excluded Packages: %d\n", summary.ExcludedPackages)
	fmt.Fprintf(w, "  Successful Downloads: %d\n", summary.SuccessfulDownloads)
	fmt.Fprintf(w, "  Failed Downloads: %d\n", summary.FailedDownloads)
	fmt.Fprintf(w, "  Output Directory: %s\n", summary.OutputDirectory)
	fmt.Fprintf(w, "  Total Size: %s (%d files)\n", summary.TotalSizeFormatted(), summary.TotalFilesCreated)
	if summary.ManifestPath != "" {
		fmt.Fprintf(w, "  Manifest: %s\n", summary.ManifestPath)
	}
	if summary.FatalError != "" {
		fmt.Fprintf(w, "  Fatal Error: %s\n", summary.FatalError)
	}
	if len(summary.FailedComponents) > 0 {
		fmt.Fprintln(w, "  Failed Components:")
		for _, f := range summary.FailedComponents {
			fmt.Fprintf(w, "    - %s\n", f)
		}
	}
	fmt.Fprintln(w, "=====================================")
}

// bindFlags lets explicitly set flags override the config file and environment
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}
