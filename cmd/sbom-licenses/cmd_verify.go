package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/sbomlicenses/internal/domain-adapters/gateways"
	"github.com/ochairo/sbomlicenses/internal/domain/entities"
)

func newVerifyCmd() *cobra.Command {
	var keyPath string

	cmd := &cobra.Command{
		Use:   "verify <output-directory>",
		Short: "Verify the checksum manifest and signature of a license directory",
		Long: `Re-hash every file listed in MANIFEST.sha256 and, when MANIFEST.sha256.asc
is present, verify its OpenPGP signature with the given public key.`,
		Example: `  # Verify checksums only
  sbom-licenses verify ./licenses

  # Verify checksums and the manifest signature
  sbom-licenses verify ./licenses --key public.asc`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := executeVerify(cmd, args[0], keyPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyPath, "key", "", "Armored OpenPGP public key for the manifest signature")
	return cmd
}

func executeVerify(cmd *cobra.Command, dir, keyPath string) error {
	out := cmd.OutOrStdout()
	verified := 0
	failed := 0

	fmt.Fprintf(out, "🔍 Verifying %s\n\n", filepath.Clean(dir))

	fmt.Fprintf(out, "📋 Verifying checksums...\n")
	manifest, err := gateways.NewManifestWriter(nil).VerifyManifest(cmd.Context(), dir)
	if err != nil {
		fmt.Fprintf(out, "❌ Checksum verification FAILED: %v\n\n", err)
		failed++
	} else {
		fmt.Fprintf(out, "✅ %d checksums verified\n\n", len(manifest.Entries))
		verified++
	}

	sigPath := filepath.Join(dir, entities.ManifestSignatureFileName)
	switch {
	case fileExists(sigPath) && keyPath == "":
		fmt.Fprintf(out, "⚠️  Manifest is signed but no --key was given, signature not checked\n\n")
	case keyPath != "":
		fmt.Fprintf(out, "🔐 Verifying manifest signature...\n")
		if err := verifySignature(dir, keyPath); err != nil {
			fmt.Fprintf(out, "❌ Signature verification FAILED: %v\n\n", err)
			failed++
		} else {
			fmt.Fprintf(out, "✅ Signature verified\n\n")
			verified++
		}
	}

	printVerifySummary(out, verified, failed)

	if failed > 0 {
		return fmt.Errorf("%d verification checks failed", failed)
	}
	return nil
}

func verifySignature(dir, keyPath string) error {
	verifier, err := gateways.NewManifestSignatureVerifier(keyPath)
	if err != nil {
		return err
	}
	return verifier.VerifyDirectory(dir)
}

func printVerifySummary(out io.Writer, verified, failed int) {
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(out, "✅ Verified: %d checks\n", verified)
	if failed > 0 {
		fmt.Fprintf(out, "❌ Failed: %d checks\n", failed)
	}
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
