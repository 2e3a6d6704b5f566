package gpg

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func newTestEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("License Bot", "test", "bot@example.com", nil)
	if err != nil {
		t.Fatalf("NewEntity() error = %v", err)
	}
	return entity
}

func writeArmored(t *testing.T, path, blockType string, serialize func(w io.Writer) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := armor.Encode(f, blockType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := serialize(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func writePublicKey(t *testing.T, entity *openpgp.Entity, path string) {
	t.Helper()
	writeArmored(t, path, openpgp.PublicKeyType, func(w io.Writer) error {
		return entity.Serialize(w)
	})
}

// Test importing a generated armored public key
func TestVerifier_ImportKeyFromFile_Armored(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "public.asc")
	writePublicKey(t, newTestEntity(t), keyPath)

	v := NewVerifier()
	if err := v.ImportKeyFromFile(keyPath); err != nil {
		t.Fatalf("ImportKeyFromFile() error = %v", err)
	}
	if v.KeyringSize() != 1 {
		t.Errorf("KeyringSize() = %d, want 1", v.KeyringSize())
	}
}

// Test importing a binary public key
func TestVerifier_ImportKeyFromFile_Binary(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "public.gpg")
	f, err := os.Create(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := newTestEntity(t).Serialize(f); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	v := NewVerifier()
	if err := v.ImportKeyFromFile(keyPath); err != nil {
		t.Fatalf("ImportKeyFromFile() error = %v", err)
	}
}

// Test importing key from nonexistent file
func TestVerifier_ImportKeyFromFile_NonexistentFile(t *testing.T) {
	err := NewVerifier().ImportKeyFromFile("/nonexistent/key.asc")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open key file") {
		t.Errorf("Expected 'failed to open key file' error, got: %v", err)
	}
}

// Test importing key from file with no keys
func TestVerifier_ImportKeyFromFile_EmptyFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "empty.asc")
	if err := os.WriteFile(keyPath, []byte{}, 0600); err != nil {
		t.Fatal(err)
	}

	if err := NewVerifier().ImportKeyFromFile(keyPath); err == nil {
		t.Error("Expected error for empty key file, got nil")
	}
}

func TestVerifier_VerifySignatureFromFile_NoKeysImported(t *testing.T) {
	err := NewVerifier().VerifySignatureFromFile("data", "data.asc")
	if err == nil || !strings.Contains(err.Error(), "no GPG keys imported") {
		t.Errorf("Expected 'no GPG keys imported' error, got: %v", err)
	}
}

func TestVerifier_VerifySignatureFromFile_NonexistentFiles(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "public.asc")
	writePublicKey(t, newTestEntity(t), keyPath)

	v := NewVerifier()
	if err := v.ImportKeyFromFile(keyPath); err != nil {
		t.Fatal(err)
	}

	if err := v.VerifySignatureFromFile("/nonexistent/data", "/nonexistent/data.asc"); err == nil {
		t.Error("Expected error for nonexistent files, got nil")
	}
}

func TestSignAndVerify_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	entity := newTestEntity(t)

	dataPath := filepath.Join(dir, "MANIFEST.sha256")
	sigPath := dataPath + ".asc"
	if err := os.WriteFile(dataPath, []byte("digest  file.txt\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := NewSigner(entity).SignFile(dataPath, sigPath); err != nil {
		t.Fatalf("SignFile() error = %v", err)
	}

	keyPath := filepath.Join(dir, "public.asc")
	writePublicKey(t, entity, keyPath)

	v := NewVerifier()
	if err := v.ImportKeyFromFile(keyPath); err != nil {
		t.Fatal(err)
	}
	if err := v.VerifySignatureFromFile(dataPath, sigPath); err != nil {
		t.Errorf("VerifySignatureFromFile() error = %v", err)
	}

	t.Run("wrong key", func(t *testing.T) {
		otherKey := filepath.Join(t.TempDir(), "other.asc")
		writePublicKey(t, newTestEntity(t), otherKey)

		other := NewVerifier()
		if err := other.ImportKeyFromFile(otherKey); err != nil {
			t.Fatal(err)
		}
		if err := other.VerifySignatureFromFile(dataPath, sigPath); err == nil {
			t.Error("expected verification failure with an unrelated key")
		}
	})
}
