// Package config loads runtime settings from a config file, the environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SBOM_LICENSES_CONCURRENCY
const EnvPrefix = "SBOM_LICENSES"

// DefaultConfigName is searched for in the working directory when no
// explicit config file is given
const DefaultConfigName = "sbom-licenses"

// Config keys
const (
	KeySBOMPath               = "sbom_path"
	KeyOutputDirectory        = "output_directory"
	KeyCreateOutputDirectory  = "create_output_directory"
	KeyOverwriteExistingFiles = "overwrite_existing_files"
	KeyDefaultFileExtension   = "default_file_extension"
	KeyExcludedPatterns       = "excluded_package_patterns"
	KeyGitHubToken            = "github_token"
	KeyConcurrency            = "concurrency"
	KeyRequestTimeout         = "request_timeout"
	KeyUserAgent              = "user_agent"
	KeyGitHubAPIURL           = "github_api_url"
	KeyNuGetBaseURL           = "nuget_base_url"
	KeyReportPath             = "report_path"
	KeyManifest               = "manifest"
	KeySigningKeyPath         = "signing_key_path"
	KeySigningKeyPassphrase   = "signing_key_passphrase"
	KeyLogLevel               = "log_level"
)

// Config holds the settings for one license download run
type Config struct {
	SBOMPath               string
	OutputDirectory        string
	CreateOutputDirectory  bool
	OverwriteExistingFiles bool
	DefaultFileExtension   string
	ExcludedPatterns       []string
	GitHubToken            string
	Concurrency            int
	RequestTimeout         time.Duration
	UserAgent              string
	GitHubAPIURL           string
	NuGetBaseURL           string
	ReportPath             string
	Manifest               bool
	SigningKeyPath         string
	SigningKeyPassphrase   string
	LogLevel               string
}

// New returns a viper instance with defaults and environment bindings applied
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeySBOMPath, "./sbom.json")
	v.SetDefault(KeyOutputDirectory, "./licenses")
	v.SetDefault(KeyCreateOutputDirectory, true)
	v.SetDefault(KeyOverwriteExistingFiles, false)
	v.SetDefault(KeyDefaultFileExtension, ".txt")
	v.SetDefault(KeyExcludedPatterns, []string{})
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyConcurrency, 8)
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyUserAgent, "sbom-licenses/1.0")
	v.SetDefault(KeyGitHubAPIURL, "https://api.github.com")
	v.SetDefault(KeyNuGetBaseURL, "https://api.nuget.org/v3-flatcontainer")
	v.SetDefault(KeyReportPath, "")
	v.SetDefault(KeyManifest, false)
	v.SetDefault(KeySigningKeyPath, "")
	v.SetDefault(KeySigningKeyPassphrase, "")
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// GITHUB_TOKEN is honoured when the prefixed variable is not set.
	_ = v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	return v
}

// ReadFile merges the config file into v. With an empty path the default
// name is searched in the working directory and its absence is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper builds a validated Config from the merged settings
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		SBOMPath:               v.GetString(KeySBOMPath),
		OutputDirectory:        v.GetString(KeyOutputDirectory),
		CreateOutputDirectory:  v.GetBool(KeyCreateOutputDirectory),
		OverwriteExistingFiles: v.GetBool(KeyOverwriteExistingFiles),
		DefaultFileExtension:   v.GetString(KeyDefaultFileExtension),
		ExcludedPatterns:       v.GetStringSlice(KeyExcludedPatterns),
		GitHubToken:            v.GetString(KeyGitHubToken),
		Concurrency:            v.GetInt(KeyConcurrency),
		RequestTimeout:         v.GetDuration(KeyRequestTimeout),
		UserAgent:              v.GetString(KeyUserAgent),
		GitHubAPIURL:           v.GetString(KeyGitHubAPIURL),
		NuGetBaseURL:           v.GetString(KeyNuGetBaseURL),
		ReportPath:             v.GetString(KeyReportPath),
		Manifest:               v.GetBool(KeyManifest),
		SigningKeyPath:         v.GetString(KeySigningKeyPath),
		SigningKeyPassphrase:   v.GetString(KeySigningKeyPassphrase),
		LogLevel:               v.GetString(KeyLogLevel),
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.DefaultFileExtension = strings.TrimSpace(c.DefaultFileExtension)
	if c.DefaultFileExtension != "" && !strings.HasPrefix(c.DefaultFileExtension, ".") {
		c.DefaultFileExtension = "." + c.DefaultFileExtension
	}

	patterns := c.ExcludedPatterns[:0]
	for _, p := range c.ExcludedPatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	c.ExcludedPatterns = patterns

	// A signing key implies a manifest to sign.
	if c.SigningKeyPath != "" {
		c.Manifest = true
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.SBOMPath) == "" {
		result = multierror.Append(result, fmt.Errorf("%s must not be empty", KeySBOMPath))
	}
	if strings.TrimSpace(c.OutputDirectory) == "" {
		result = multierror.Append(result, fmt.Errorf("%s must not be empty", KeyOutputDirectory))
	}
	if c.DefaultFileExtension == "" || c.DefaultFileExtension == "." {
		result = multierror.Append(result, fmt.Errorf("%s must not be empty", KeyDefaultFileExtension))
	}
	if c.Concurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("%s must be at least 1, got %d", KeyConcurrency, c.Concurrency))
	}
	if c.RequestTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s must be positive, got %s", KeyRequestTimeout, c.RequestTimeout))
	}

	return result.ErrorOrNil()
}
