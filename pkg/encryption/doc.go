// Package encryption generates symmetric keys and encrypts single files in place.
//
// A 32-byte key selects randomized AES-256-GCM, a 64-byte key selects deterministic AES-SIV.
// Ciphertext carries a short envelope header which is authenticated together with the payload.
// Files are rewritten atomically: a failed operation leaves the original content untouched.
package encryption
