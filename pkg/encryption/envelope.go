package encryption

import (
	"bytes"
	"fmt"
)

const (
	envelopeMagic   = "VLCK"
	envelopeVersion = byte(1)
)

const envelopeHeaderSize = len(envelopeMagic) + 2

func newEnvelopeHeader(mode Mode) []byte {
	header := make([]byte, envelopeHeaderSize)
	copy(header, []byte(envelopeMagic))

	header[len(envelopeMagic)] = envelopeVersion
	header[len(envelopeMagic)+1] = byte(mode)

	return header
}

// parseEnvelopeHeader checks the header at the start of data and returns its mode.
func parseEnvelopeHeader(data []byte) (Mode, error) {
	if len(data) < envelopeHeaderSize {
		return 0, fmt.Errorf("%w: envelope header too short", ErrCorrupt)
	}

	if !bytes.Equal(data[:len(envelopeMagic)], []byte(envelopeMagic)) {
		return 0, fmt.Errorf("%w: invalid envelope magic", ErrCorrupt)
	}

	version := data[len(envelopeMagic)]
	if version != envelopeVersion {
		return 0, fmt.Errorf("%w: unsupported envelope version %d", ErrCorrupt, version)
	}

	mode := Mode(data[len(envelopeMagic)+1])

	switch mode {
	case ModeDeterministic, ModeRandomized:
	default:
		return 0, fmt.Errorf("%w: unsupported envelope mode %d", ErrCorrupt, byte(mode))
	}

	return mode, nil
}
