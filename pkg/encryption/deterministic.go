package encryption

import (
	"fmt"

	"github.com/tink-crypto/tink-go/v2/daead"
	aes_sivpb "github.com/tink-crypto/tink-go/v2/proto/aes_siv_go_proto"
	"github.com/tink-crypto/tink-go/v2/tink"
)

const aesSivTypeURL = "type.googleapis.com/google.crypto.tink.AesSivKey"

// deterministicPrimitive seals with AES-SIV: equal plaintexts under equal keys give equal ciphertexts.
type deterministicPrimitive struct {
	daead tink.DeterministicAEAD
}

func newDeterministicPrimitive(key Key) (*deterministicPrimitive, error) {
	if len(key) != AesSivKeySize {
		return nil, fmt.Errorf("%w: deterministic mode requires %d-byte key", ErrInvalidKey, AesSivKeySize)
	}

	handle, err := newKeysetHandle(aesSivTypeURL, &aes_sivpb.AesSivKey{
		Version:  0,
		KeyValue: key,
	})
	if err != nil {
		return nil, err
	}

	daeadPrimitive, err := daead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("creating DeterministicAEAD: %w", err)
	}

	return &deterministicPrimitive{daead: daeadPrimitive}, nil
}

func (p *deterministicPrimitive) seal(plaintext, associatedData []byte) ([]byte, error) {
	ciphertext, err := p.daead.EncryptDeterministically(plaintext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("encrypting deterministically: %w", err)
	}

	return ciphertext, nil
}

func (p *deterministicPrimitive) open(ciphertext, associatedData []byte) ([]byte, error) {
	plaintext, err := p.daead.DecryptDeterministically(ciphertext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return plaintext, nil
}
