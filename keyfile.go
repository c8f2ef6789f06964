package spk

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/meigma/spk/internal/sig"
	"github.com/meigma/spk/internal/wire"
)

// KeyPair is a signing key pair. It is generated once, persisted
// verbatim in a key file, and never derived or rotated.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeyPair creates a fresh signing key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyPair{Public: pub, Private: priv}, nil
}

// AppID returns the key pair's app ID.
func (kp *KeyPair) AppID() AppID {
	return AppIDForPublicKey(kp.Public)
}

// WriteKeyFile persists kp to path as an uncompressed structured
// message. The file is the only copy of the private key, so it is
// created owner-readable only.
func WriteKeyFile(path string, kp *KeyPair) error {
	data := wire.MarshalKeyFile(kp.Public, kp.Private)
	if err := writeFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("write key file %s: %w", path, err)
	}
	return nil
}

// LoadKeyFile reads a key pair from path, validating that both keys have
// exactly the sizes of the signing algorithm. Any other size means a
// corrupt or foreign key file.
func LoadKeyFile(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pub, priv, err := wire.ParseKeyFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(pub) != sig.PublicKeySize || len(priv) != sig.PrivateKeySize {
		return nil, fmt.Errorf("%s: %w: key sizes %d/%d, want %d/%d",
			path, ErrInvalidKeyFile, len(pub), len(priv), sig.PublicKeySize, sig.PrivateKeySize)
	}

	return &KeyPair{
		Public:  ed25519.PublicKey(append([]byte(nil), pub...)),
		Private: ed25519.PrivateKey(append([]byte(nil), priv...)),
	}, nil
}
