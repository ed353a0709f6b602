package node

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
)

// KeyStore walks a directory of ".ed25519" seed files and makes them
// available by name, the way the teacher's nameservice package resolves
// account names from ".ecdsa" key files.
type KeyStore struct {
	keys map[string]ledgercrypto.PrivateKey
}

// LoadKeyStore walks root for "*.ed25519" files and loads each as a 64 byte
// Ed25519 private key (seed ‖ public key), named after the file's base name.
func LoadKeyStore(root string) (*KeyStore, error) {
	ks := KeyStore{keys: make(map[string]ledgercrypto.PrivateKey)}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}
		if info.IsDir() || path.Ext(fileName) != ".ed25519" {
			return nil
		}

		raw, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("reading key file %s: %w", fileName, err)
		}
		if len(raw) != ledgercrypto.PrivateKeySize {
			return fmt.Errorf("key file %s: expected %d bytes, got %d", fileName, ledgercrypto.PrivateKeySize, len(raw))
		}

		var priv ledgercrypto.PrivateKey
		copy(priv[:], raw)

		name := strings.TrimSuffix(path.Base(fileName), ".ed25519")
		ks.keys[name] = priv

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ks, nil
}

// Lookup returns the named private key.
func (ks *KeyStore) Lookup(name string) (ledgercrypto.PrivateKey, bool) {
	priv, ok := ks.keys[name]
	return priv, ok
}

// SaveKey writes priv to path as a raw 64 byte seed‖public key file.
func SaveKey(path string, priv ledgercrypto.PrivateKey) error {
	if err := os.WriteFile(path, priv[:], 0600); err != nil {
		return fmt.Errorf("writing key file %s: %w", path, err)
	}
	return nil
}

// LoadKey reads a single raw 64 byte Ed25519 private key file.
func LoadKey(path string) (ledgercrypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ledgercrypto.PrivateKey{}, fmt.Errorf("reading key file %s: %w", path, err)
	}
	if len(raw) != ledgercrypto.PrivateKeySize {
		return ledgercrypto.PrivateKey{}, fmt.Errorf("key file %s: expected %d bytes, got %d", path, ledgercrypto.PrivateKeySize, len(raw))
	}

	var priv ledgercrypto.PrivateKey
	copy(priv[:], raw)
	return priv, nil
}
