package encryption_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/vaultlock/pkg/config"
	"github.com/idelchi/vaultlock/pkg/encryption"
)

func writeVault(t *testing.T, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vault.sqlite")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

func readVault(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

func newKey(t *testing.T, mode encryption.Mode) encryption.Key {
	t.Helper()

	key, err := encryption.GenerateKeyFor(mode)
	require.NoError(t, err)

	return key
}

func TestHelloWorldVault(t *testing.T) {
	t.Parallel()

	plaintext := []byte("Hello, world!")
	path := writeVault(t, plaintext)
	key := newKey(t, encryption.ModeRandomized)

	require.NoError(t, encryption.Encrypt(key, path))

	encrypted := readVault(t, path)
	assert.NotEqual(t, plaintext, encrypted)

	codec, err := encryption.NewCodec(nil)
	require.NoError(t, err)

	opened, err := codec.Open(key, encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	require.NoError(t, encryption.Decrypt(key, path))
	assert.Equal(t, plaintext, readVault(t, path))
}

func TestEncryptDecryptFileRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := map[string][]byte{
		"empty":   {},
		"text":    []byte("Unicode: こんにちは"),
		"binary":  {0x00, 0xff, 0x10, 0x00, 0x7f},
		"large":   bytes.Repeat([]byte("vault"), 64*1024),
		"envelop": []byte("VLCK\x01\x02 looks like a header"),
	}

	for _, mode := range []encryption.Mode{encryption.ModeRandomized, encryption.ModeDeterministic} {
		for name, payload := range payloads {
			t.Run(mode.String()+"/"+name, func(t *testing.T) {
				t.Parallel()

				path := writeVault(t, payload)
				key := newKey(t, mode)

				codec, err := encryption.NewCodec(nil)
				require.NoError(t, err)

				require.NoError(t, codec.EncryptFile(key, path))
				require.NoError(t, codec.DecryptFile(key, path))

				assert.True(t, bytes.Equal(payload, readVault(t, path)))
			})
		}
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	t.Parallel()

	for _, mode := range []encryption.Mode{encryption.ModeRandomized, encryption.ModeDeterministic} {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			path := writeVault(t, []byte("Hello, world!"))

			require.NoError(t, encryption.Encrypt(newKey(t, mode), path))

			encrypted := readVault(t, path)

			err := encryption.Decrypt(newKey(t, mode), path)
			require.ErrorIs(t, err, encryption.ErrAuthentication)

			assert.Equal(t, encrypted, readVault(t, path), "file must be left untouched")
		})
	}
}

func TestDecryptWithKeyOfOtherMode(t *testing.T) {
	t.Parallel()

	path := writeVault(t, []byte("Hello, world!"))

	require.NoError(t, encryption.Encrypt(newKey(t, encryption.ModeRandomized), path))

	err := encryption.Decrypt(newKey(t, encryption.ModeDeterministic), path)
	assert.ErrorIs(t, err, encryption.ErrAuthentication)
}

func TestDecryptPlaintext(t *testing.T) {
	t.Parallel()

	plaintext := []byte("Hello, world!")
	path := writeVault(t, plaintext)

	err := encryption.Decrypt(newKey(t, encryption.ModeRandomized), path)
	require.ErrorIs(t, err, encryption.ErrCorrupt)

	assert.Equal(t, plaintext, readVault(t, path))
}

func TestOpenTampered(t *testing.T) {
	t.Parallel()

	codec, err := encryption.NewCodec(nil)
	require.NoError(t, err)

	key := newKey(t, encryption.ModeRandomized)

	sealed, err := codec.Seal(key, []byte("Hello, world!"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset int
		want   error
	}{
		{name: "magic", offset: 0, want: encryption.ErrCorrupt},
		{name: "version", offset: 4, want: encryption.ErrCorrupt},
		{name: "mode", offset: 5, want: encryption.ErrCorrupt},
		{name: "nonce", offset: 6, want: encryption.ErrAuthentication},
		{name: "tag", offset: len(sealed) - 1, want: encryption.ErrAuthentication},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tampered := bytes.Clone(sealed)
			tampered[tc.offset] ^= 0x80

			_, err := codec.Open(key, tampered)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()

		_, err := codec.Open(key, sealed[:len(sealed)-4])
		assert.ErrorIs(t, err, encryption.ErrAuthentication)
	})
}

func TestSealDeterminism(t *testing.T) {
	t.Parallel()

	codec, err := encryption.NewCodec(nil)
	require.NoError(t, err)

	plaintext := []byte("Hello, world!")

	deterministic := newKey(t, encryption.ModeDeterministic)

	first, err := codec.Seal(deterministic, plaintext)
	require.NoError(t, err)

	second, err := codec.Seal(deterministic, plaintext)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	randomized := newKey(t, encryption.ModeRandomized)

	first, err = codec.Seal(randomized, plaintext)
	require.NoError(t, err)

	second, err = codec.Seal(randomized, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestInvalidKey(t *testing.T) {
	t.Parallel()

	plaintext := []byte("Hello, world!")
	path := writeVault(t, plaintext)

	err := encryption.Encrypt(encryption.Key("too short"), path)
	require.ErrorIs(t, err, encryption.ErrInvalidKey)

	assert.Equal(t, plaintext, readVault(t, path))
}

func TestEncryptMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.sqlite")

	err := encryption.Encrypt(newKey(t, encryption.ModeRandomized), path)
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist, "no file must be created")
}

func TestMaxSize(t *testing.T) {
	t.Parallel()

	plaintext := bytes.Repeat([]byte{'x'}, 16)
	path := writeVault(t, plaintext)

	codec, err := encryption.NewCodec(&config.Config{MaxSize: "8B"})
	require.NoError(t, err)

	err = codec.EncryptFile(newKey(t, encryption.ModeRandomized), path)
	require.ErrorIs(t, err, encryption.ErrTooLarge)

	assert.Equal(t, plaintext, readVault(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files must remain")
}

func TestNewCodecInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := encryption.NewCodec(&config.Config{MaxSize: "unbounded"})
	assert.Error(t, err)
}

func TestPreservesPermissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not tracked on windows")
	}

	path := writeVault(t, []byte("Hello, world!"))
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, encryption.Encrypt(newKey(t, encryption.ModeRandomized), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestPreserveTimestamps(t *testing.T) {
	t.Parallel()

	path := writeVault(t, []byte("Hello, world!"))

	modTime := time.Date(2020, time.January, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, modTime, modTime))

	codec, err := encryption.NewCodec(&config.Config{MaxSize: config.DefaultMaxSize, PreserveTimestamps: true})
	require.NoError(t, err)

	require.NoError(t, codec.EncryptFile(newKey(t, encryption.ModeRandomized), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, modTime.Equal(info.ModTime()), "got %s, want %s", info.ModTime(), modTime)
}

func TestEncryptThroughSymlink(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}

	plaintext := []byte("Hello, world!")
	target := writeVault(t, plaintext)
	link := filepath.Join(t.TempDir(), "link.sqlite")
	require.NoError(t, os.Symlink(target, link))

	key := newKey(t, encryption.ModeRandomized)

	require.NoError(t, encryption.Encrypt(key, link))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link must survive encryption")

	encrypted := readVault(t, target)
	assert.NotEqual(t, plaintext, encrypted, "link target must hold ciphertext")

	codec, err := encryption.NewCodec(nil)
	require.NoError(t, err)

	opened, err := codec.Open(key, encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	require.NoError(t, encryption.Decrypt(key, link))
	assert.Equal(t, plaintext, readVault(t, target))

	info, err = os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}
