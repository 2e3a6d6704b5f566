package gpg

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewSignerFromFile_Unencrypted(t *testing.T) {
	entity := newTestEntity(t)
	keyPath := filepath.Join(t.TempDir(), "private.asc")
	writeArmored(t, keyPath, "PGP PRIVATE KEY BLOCK", func(w io.Writer) error {
		return entity.SerializePrivate(w, nil)
	})

	signer, err := NewSignerFromFile(keyPath, nil)
	if err != nil {
		t.Fatalf("NewSignerFromFile() error = %v", err)
	}
	if got := signer.KeyID(); len(got) != 40 || got != strings.ToUpper(got) {
		t.Errorf("KeyID() = %q, want upper-case hex fingerprint", got)
	}
}

func TestNewSignerFromFile_Encrypted(t *testing.T) {
	entity := newTestEntity(t)
	passphrase := []byte("correct horse")
	if err := entity.EncryptPrivateKeys(passphrase, nil); err != nil {
		t.Fatalf("EncryptPrivateKeys() error = %v", err)
	}

	keyPath := filepath.Join(t.TempDir(), "private.asc")
	writeArmored(t, keyPath, "PGP PRIVATE KEY BLOCK", func(w io.Writer) error {
		return entity.SerializePrivateWithoutSigning(w, nil)
	})

	if _, err := NewSignerFromFile(keyPath, nil); err == nil {
		t.Error("expected error for encrypted key without passphrase")
	}
	if _, err := NewSignerFromFile(keyPath, []byte("wrong")); err == nil {
		t.Error("expected error for wrong passphrase")
	}
	if _, err := NewSignerFromFile(keyPath, passphrase); err != nil {
		t.Errorf("NewSignerFromFile() with passphrase error = %v", err)
	}
}

func TestNewSignerFromFile_PublicKeyOnly(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "public.asc")
	writePublicKey(t, newTestEntity(t), keyPath)

	_, err := NewSignerFromFile(keyPath, nil)
	if err == nil || !strings.Contains(err.Error(), "no private key") {
		t.Errorf("expected 'no private key' error, got: %v", err)
	}
}
