package encryption

import (
	"bytes"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"

	"google.golang.org/protobuf/proto"
)

// primitive seals and opens payloads, binding the associated data into the ciphertext.
type primitive interface {
	seal(plaintext, associatedData []byte) ([]byte, error)
	open(ciphertext, associatedData []byte) ([]byte, error)
}

// newPrimitive builds the tink primitive matching mode from raw key bytes.
func newPrimitive(key Key, mode Mode) (primitive, error) {
	var (
		prim primitive
		err  error
	)

	switch mode {
	case ModeDeterministic:
		prim, err = newDeterministicPrimitive(key)
	case ModeRandomized:
		prim, err = newRandomizedPrimitive(key)
	default:
		return nil, fmt.Errorf("unsupported mode %s", mode)
	}

	if err != nil {
		return nil, err
	}

	return prim, nil
}

// newKeysetHandle wraps a single serialized key into a Tink keyset handle.
// The key uses the RAW output prefix so ciphertext carries no Tink key id.
func newKeysetHandle(typeURL string, key proto.Message) (*keyset.Handle, error) {
	serializedKey, err := proto.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("serializing key: %w", err)
	}

	keyData := &tinkpb.KeyData{
		TypeUrl:         typeURL,
		Value:           serializedKey,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}

	keySet := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData:          keyData,
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	}

	serializedKeyset, err := proto.Marshal(keySet)
	if err != nil {
		return nil, fmt.Errorf("serializing keyset: %w", err)
	}

	handle, err := insecurecleartextkeyset.Read(
		keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, fmt.Errorf("creating keyset handle: %w", err)
	}

	return handle, nil
}
