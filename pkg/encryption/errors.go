package encryption

import "errors"

var (
	// ErrKeyFileNotFound is returned when loading a key from a path that does not exist.
	ErrKeyFileNotFound = errors.New("key file not found")
	// ErrInvalidKey is returned when a key has neither the randomized nor the deterministic size.
	ErrInvalidKey = errors.New("invalid key")
	// ErrAuthentication is returned when ciphertext does not validate under the given key.
	ErrAuthentication = errors.New("authentication failed")
	// ErrCorrupt is returned when data does not carry a valid envelope header.
	ErrCorrupt = errors.New("corrupt vault data")
	// ErrTooLarge is returned when a vault file exceeds the configured maximum size.
	ErrTooLarge = errors.New("vault file too large")
)
