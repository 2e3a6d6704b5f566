package gateways

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sha256("abc")
const abcSHA256 = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestChecksumVerifier_CalculateChecksum(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "LICENSE")
	if err := os.WriteFile(testFile, []byte("abc"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	sum, err := NewChecksumVerifier().CalculateChecksum(testFile)
	if err != nil {
		t.Fatalf("CalculateChecksum() error = %v", err)
	}
	if sum != abcSHA256 {
		t.Errorf("CalculateChecksum() = %s, want %s", sum, abcSHA256)
	}
}

func TestChecksumVerifier_VerifyChecksum(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "LICENSE")
	if err := os.WriteFile(testFile, []byte("abc"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	verifier := NewChecksumVerifier()

	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  bool
	}{
		{"valid checksum", testFile, abcSHA256, false},
		{"uppercase checksum", testFile, strings.ToUpper(abcSHA256), false},
		{"mismatch", testFile, strings.Repeat("0", 64), true},
		{"missing file", filepath.Join(t.TempDir(), "missing"), abcSHA256, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifier.VerifyChecksum(context.Background(), tt.path, tt.expected)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyChecksum() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
