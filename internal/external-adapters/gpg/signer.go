package gpg

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer produces armored detached signatures with a private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads the first private key in keyPath. An encrypted key
// is unlocked with passphrase.
func NewSignerFromFile(keyPath string, passphrase []byte) (*Signer, error) {
	entities, err := readKeyFile(keyPath)
	if err != nil {
		return nil, err
	}

	var entity *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return nil, fmt.Errorf("no private key found in %s", keyPath)
	}

	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("private key in %s is encrypted and no passphrase was given", keyPath)
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		for _, sub := range entity.Subkeys {
			if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
				if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
					return nil, fmt.Errorf("failed to decrypt subkey: %w", err)
				}
			}
		}
	}

	return &Signer{entity: entity}, nil
}

// NewSigner wraps an already unlocked entity
func NewSigner(entity *openpgp.Entity) *Signer {
	return &Signer{entity: entity}
}

// SignFile writes an armored detached signature of filePath to sigPath
func (s *Signer) SignFile(filePath, sigPath string) error {
	//nolint:gosec // G304: filePath is the manifest written by this tool
	data, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file to sign: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer data.Close()

	//nolint:gosec // G304: sigPath sits next to the manifest
	out, err := os.OpenFile(sigPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, data, nil); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to sign %s: %w", filePath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close signature file: %w", err)
	}

	return nil
}

// KeyID returns the signing key fingerprint in hex
func (s *Signer) KeyID() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}
