package encryption

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"

	"github.com/idelchi/vaultlock/internal/fileutil"
)

// keyFilePerm restricts key files to the owner.
const keyFilePerm os.FileMode = 0o600

// Key is symmetric key material. Its length selects the encryption mode.
type Key []byte

// GenerateKey returns a new random key for randomized encryption.
func GenerateKey() (Key, error) {
	return GenerateKeyFor(ModeRandomized)
}

// GenerateKeyFor returns a new random key sized for mode.
func GenerateKeyFor(mode Mode) (Key, error) {
	size, err := mode.KeySize()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	key := make(Key, size)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return key, nil
}

// LoadKey reads the raw key bytes stored at path.
// A missing file yields an error matching ErrKeyFileNotFound.
func LoadKey(path string) (Key, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrKeyFileNotFound, path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading key file %q: %w", path, err)
	}

	return Key(data), nil
}

// SaveKey writes the raw key bytes to path, readable by the owner only.
// An existing file is replaced atomically.
func SaveKey(path string, key Key) (err error) {
	tc, err := fileutil.NewTempContext(path)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	if _, err := tc.TmpFile.Write(key); err != nil {
		return fmt.Errorf("writing key file %q: %w", path, err)
	}

	if err := tc.Commit(keyFilePerm); err != nil {
		return fmt.Errorf("saving key file %q: %w", path, err)
	}

	return nil
}

// Mode returns the encryption mode implied by the key length.
func (k Key) Mode() (Mode, error) {
	switch len(k) {
	case AesKeySize:
		return ModeRandomized, nil
	case AesSivKeySize:
		return ModeDeterministic, nil
	default:
		return 0, fmt.Errorf("%w: key must be %d or %d bytes, got %d", ErrInvalidKey, AesKeySize, AesSivKeySize, len(k))
	}
}

// Equal reports whether both keys hold the same bytes, in constant time.
func (k Key) Equal(other Key) bool {
	return subtle.ConstantTimeCompare(k, other) == 1
}

// Wipe zeroes the key material.
func (k Key) Wipe() {
	memguard.WipeBytes(k)
}
