package encryption

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/vaultlock/internal/fileutil"
	"github.com/idelchi/vaultlock/pkg/config"
)

// vaultFilePerm is applied when the rewritten file has no permissions to inherit.
const vaultFilePerm os.FileMode = 0o600

// Codec encrypts and decrypts vault files in place.
type Codec struct {
	// cfg contains runtime configuration options
	cfg *config.Config
}

// NewCodec creates a Codec from cfg. A nil cfg selects the defaults.
func NewCodec(cfg *config.Config) (*Codec, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating codec: %w", err)
	}

	return &Codec{cfg: cfg}, nil
}

// Encrypt replaces the content of filename with its ciphertext under key, using the default configuration.
func Encrypt(key Key, filename string) error {
	codec, err := NewCodec(nil)
	if err != nil {
		return err
	}

	return codec.EncryptFile(key, filename)
}

// Decrypt replaces the ciphertext in filename with the plaintext, using the default configuration.
func Decrypt(key Key, filename string) error {
	codec, err := NewCodec(nil)
	if err != nil {
		return err
	}

	return codec.DecryptFile(key, filename)
}

// Seal encrypts plaintext under key and returns the enveloped ciphertext.
func (c *Codec) Seal(key Key, plaintext []byte) ([]byte, error) {
	mode, err := key.Mode()
	if err != nil {
		return nil, err
	}

	prim, err := newPrimitive(key, mode)
	if err != nil {
		return nil, err
	}

	header := newEnvelopeHeader(mode)

	ciphertext, err := prim.seal(plaintext, header)
	if err != nil {
		return nil, err
	}

	return append(header, ciphertext...), nil
}

// Open verifies and decrypts enveloped ciphertext produced by Seal.
// Data without a valid envelope fails with ErrCorrupt, data that does not
// validate under key fails with ErrAuthentication.
func (c *Codec) Open(key Key, data []byte) ([]byte, error) {
	keyMode, err := key.Mode()
	if err != nil {
		return nil, err
	}

	mode, err := parseEnvelopeHeader(data)
	if err != nil {
		return nil, err
	}

	if mode != keyMode {
		return nil, fmt.Errorf("%w: %s key cannot open %s data", ErrAuthentication, keyMode, mode)
	}

	prim, err := newPrimitive(key, mode)
	if err != nil {
		return nil, err
	}

	return prim.open(data[envelopeHeaderSize:], data[:envelopeHeaderSize])
}

// EncryptFile replaces the content of filename with its ciphertext under key.
func (c *Codec) EncryptFile(key Key, filename string) error {
	if err := c.rewrite(filename, func(plaintext []byte) ([]byte, error) {
		return c.Seal(key, plaintext)
	}); err != nil {
		return fmt.Errorf("encrypting %q: %w", filename, err)
	}

	return nil
}

// DecryptFile replaces the ciphertext in filename with the plaintext recovered under key.
// Nothing is written unless the ciphertext authenticates.
func (c *Codec) DecryptFile(key Key, filename string) error {
	if err := c.rewrite(filename, func(ciphertext []byte) ([]byte, error) {
		return c.Open(key, ciphertext)
	}); err != nil {
		return fmt.Errorf("decrypting %q: %w", filename, err)
	}

	return nil
}

// rewrite reads filename, transforms its content and atomically replaces the file with the result.
// Symlinks are resolved so the file they point to is replaced and the link is kept.
// Both buffers are wiped before returning.
func (c *Codec) rewrite(filename string, transform func([]byte) ([]byte, error)) (err error) {
	limit := c.cfg.MaxBytes()

	target, err := filepath.EvalSymlinks(filename)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	input, err := fileutil.ReadLimited(target, limit)
	if errors.Is(err, fileutil.ErrLimitExceeded) {
		return fmt.Errorf("%w: limit is %s", ErrTooLarge, humanize.IBytes(limit))
	}

	if err != nil {
		return err
	}

	defer memguard.WipeBytes(input)

	output, err := transform(input)
	if err != nil {
		return err
	}

	defer memguard.WipeBytes(output)

	tc, err := fileutil.NewTempContext(target)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	if _, err := tc.TmpFile.Write(output); err != nil {
		return fmt.Errorf("writing temporary file: %w", err)
	}

	// Timestamps go on the temp file so nothing can fail once the rename is done.
	if tc.SrcInfo != nil {
		if err := fileutil.FinalizeOutput(tc.TmpName, c.cfg.PreserveTimestamps, tc.SrcInfo.ModTime()); err != nil {
			return fmt.Errorf("finalizing output: %w", err)
		}
	}

	if err := tc.Commit(tc.Perm(vaultFilePerm)); err != nil {
		return err
	}

	return nil
}
