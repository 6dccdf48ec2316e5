package encryption

import (
	"fmt"

	"github.com/tink-crypto/tink-go/v2/aead"
	aes_gcmpb "github.com/tink-crypto/tink-go/v2/proto/aes_gcm_go_proto"
	"github.com/tink-crypto/tink-go/v2/tink"
)

const aesGcmTypeURL = "type.googleapis.com/google.crypto.tink.AesGcmKey"

// randomizedPrimitive seals with AES-256-GCM under a fresh random nonce per call.
type randomizedPrimitive struct {
	aead tink.AEAD
}

func newRandomizedPrimitive(key Key) (*randomizedPrimitive, error) {
	if len(key) != AesKeySize {
		return nil, fmt.Errorf("%w: randomized mode requires %d-byte key", ErrInvalidKey, AesKeySize)
	}

	handle, err := newKeysetHandle(aesGcmTypeURL, &aes_gcmpb.AesGcmKey{
		Version:  0,
		KeyValue: key,
	})
	if err != nil {
		return nil, err
	}

	aeadPrimitive, err := aead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD: %w", err)
	}

	return &randomizedPrimitive{aead: aeadPrimitive}, nil
}

func (p *randomizedPrimitive) seal(plaintext, associatedData []byte) ([]byte, error) {
	ciphertext, err := p.aead.Encrypt(plaintext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}

	return ciphertext, nil
}

func (p *randomizedPrimitive) open(ciphertext, associatedData []byte) ([]byte, error) {
	plaintext, err := p.aead.Decrypt(ciphertext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return plaintext, nil
}
