package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSBOM = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "components": [
    {"name": "Acme.Widget", "version": "1.0.0",
     "externalReferences": [{"type": "vcs", "url": "https://github.com/acme/widget"}]},
    {"name": "Microsoft.Extensions.Logging", "version": "8.0.0"}
  ]
}`

// newUpstream serves the GitHub license API for acme/widget and 404 for everything else
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widget/license" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		content := base64.StdEncoding.EncodeToString([]byte("MIT License"))
		_, _ = w.Write([]byte(`{"name": "LICENSE", "encoding": "base64", "content": "` + content + `",
			"license": {"spdx_id": "MIT", "name": "MIT License"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func writeTestConfig(t *testing.T, dir, upstream string) string {
	t.Helper()
	path := filepath.Join(dir, "sbom-licenses.yaml")
	content := "github_api_url: " + upstream + "\n" +
		"nuget_base_url: " + upstream + "/nuget\n" +
		"request_timeout: 2s\n" +
		"log_level: error\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_DownloadsLicenses(t *testing.T) {
	dir := t.TempDir()
	sbomPath := filepath.Join(dir, "sbom.json")
	if err := os.WriteFile(sbomPath, []byte(testSBOM), 0600); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "licenses")
	reportPath := filepath.Join(dir, "report.yaml")

	stdout, stderr, err := execute(t, sbomPath, outDir,
		"--config", writeTestConfig(t, dir, newUpstream(t).URL),
		"--exclude", "Microsoft.*",
		"--manifest",
		"--report", reportPath,
	)
	if err != nil {
		t.Fatalf("Execute() error = %v\nstdout:\n%s\nstderr:\n%s", err, stdout, stderr)
	}

	for _, want := range []string{"Total Components: 2", "Excluded Packages: 1", "Successful Downloads: 1", "Failed Downloads: 0", "Process completed successfully!"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Acme.Widget-1.0.0.txt"))
	if err != nil || string(data) != "MIT License" {
		t.Errorf("license file = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "MANIFEST.sha256")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
	if report, err := os.ReadFile(reportPath); err != nil || !strings.Contains(string(report), "successful_downloads: 1") {
		t.Errorf("report = %q, %v", report, err)
	}

	verifyOut, _, err := execute(t, "verify", outDir)
	if err != nil {
		t.Errorf("verify error = %v\n%s", err, verifyOut)
	}
	if !strings.Contains(verifyOut, "1 checksums verified") {
		t.Errorf("verify output:\n%s", verifyOut)
	}
}

func TestRootCmd_FailuresExitNonZero(t *testing.T) {
	dir := t.TempDir()
	sbomPath := filepath.Join(dir, "sbom.json")
	if err := os.WriteFile(sbomPath, []byte(`{"bomFormat": "CycloneDX", "components": [{"name": "Orphan", "version": "0.1.0"}]}`), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, sbomPath, filepath.Join(dir, "licenses"),
		"--config", writeTestConfig(t, dir, newUpstream(t).URL))

	if !errors.Is(err, errRunFailed) {
		t.Fatalf("Execute() error = %v, want errRunFailed", err)
	}
	if !strings.Contains(stdout, "Orphan: No license file found") {
		t.Errorf("stdout missing failure detail:\n%s", stdout)
	}
}

func TestRootCmd_MissingSBOM(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := execute(t, filepath.Join(dir, "missing.json"), filepath.Join(dir, "licenses"),
		"--config", writeTestConfig(t, dir, "http://127.0.0.1:0"))

	if !errors.Is(err, errRunFailed) {
		t.Fatalf("Execute() error = %v, want errRunFailed", err)
	}
	if !strings.Contains(stderr, "SBOM file not found") || !strings.Contains(stderr, "Examples:") {
		t.Errorf("stderr missing usage examples:\n%s", stderr)
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, filepath.Join(dir, "sbom.json"),
		"--config", writeTestConfig(t, dir, "http://127.0.0.1:0"),
		"--concurrency", "0")

	if err == nil || errors.Is(err, errRunFailed) || !strings.Contains(err.Error(), "concurrency") {
		t.Errorf("Execute() error = %v, want a configuration error", err)
	}
}

func TestVerifyCmd_MissingManifest(t *testing.T) {
	out, _, err := execute(t, "verify", t.TempDir())
	if !errors.Is(err, errRunFailed) {
		t.Errorf("verify error = %v, want errRunFailed", err)
	}
	if !strings.Contains(out, "Checksum verification FAILED") {
		t.Errorf("verify output:\n%s", out)
	}
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "sbom-licenses dev") {
		t.Errorf("version output = %q", out)
	}
}
