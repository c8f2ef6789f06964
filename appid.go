package spk

import (
	"fmt"

	"github.com/meigma/spk/internal/base32"
	"github.com/meigma/spk/internal/sig"
)

// AppID is the human-shareable identity of a package author: the base32
// encoding of an Ed25519 public key. Deriving it is deterministic, so
// two packages with the same app ID were signed (or claim to be signed)
// by holders of the same private key.
type AppID string

// AppIDForPublicKey derives the app ID for a public key.
func AppIDForPublicKey(publicKey []byte) AppID {
	if len(publicKey) != sig.PublicKeySize {
		panic(fmt.Sprintf("spk: public key is %d bytes, want %d", len(publicKey), sig.PublicKeySize))
	}
	return AppID(base32.Encode(publicKey))
}

// ParseAppID decodes an app ID back into the public key it encodes.
// Typo aliases (o for 0, i/l for 1, b for 8) and either letter case are
// accepted.
func ParseAppID(id string) ([]byte, error) {
	key, err := base32.Decode(id)
	if err != nil {
		return nil, err
	}
	if len(key) != sig.PublicKeySize {
		return nil, fmt.Errorf("%w: app ID decodes to %d bytes, want %d", ErrInvalidEncoding, len(key), sig.PublicKeySize)
	}
	return key, nil
}

func (id AppID) String() string {
	return string(id)
}
