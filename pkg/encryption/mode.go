package encryption

import "fmt"

// Mode represents the encryption scheme a key is used with.
type Mode byte

const (
	// ModeDeterministic represents deterministic encryption using AES-SIV.
	ModeDeterministic Mode = 0x01
	// ModeRandomized represents randomized encryption using AES-256-GCM.
	ModeRandomized Mode = 0x02
)

const (
	// AesSivKeySize is the required key size for deterministic encryption.
	AesSivKeySize = 64
	// AesKeySize is the required key size for randomized encryption.
	AesKeySize = 32
)

func (m Mode) String() string {
	switch m {
	case ModeDeterministic:
		return "deterministic"
	case ModeRandomized:
		return "randomized"
	default:
		return fmt.Sprintf("mode(%d)", byte(m))
	}
}

// KeySize returns the key length in bytes required by the mode.
func (m Mode) KeySize() (int, error) {
	switch m {
	case ModeDeterministic:
		return AesSivKeySize, nil
	case ModeRandomized:
		return AesKeySize, nil
	default:
		return 0, fmt.Errorf("unsupported mode %s", m)
	}
}
