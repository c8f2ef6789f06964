// Package sig implements the hash-then-sign protocol binding a key pair
// to an archive payload.
//
// The signed message is the SHA-512 hash of the serialized archive, not
// the archive itself. The signature is attached: opening it both
// authenticates the signer and yields the hash back, which the verifier
// then compares against an independently recomputed hash of the payload.
// Splitting "is this signature genuine" from "does this payload match"
// keeps the signature primitive off the (potentially huge) payload and
// gives each failure its own error.
package sig

import (
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"fmt"
)

const (
	// PublicKeySize is the exact size of a public key.
	PublicKeySize = ed25519.PublicKeySize
	// PrivateKeySize is the exact size of a private key.
	PrivateKeySize = ed25519.PrivateKeySize
	// HashSize is the size of the payload hash embedded in a signature.
	HashSize = sha512.Size
	// Overhead is the signing algorithm's fixed overhead.
	Overhead = ed25519.SignatureSize
	// SignatureSize is the total size of an attached signature: the
	// raw signature followed by the signed hash.
	SignatureSize = HashSize + Overhead
)

var (
	// ErrInvalidSignature is returned when a signature fails to open
	// under its embedded public key.
	ErrInvalidSignature = errors.New("spk: invalid signature")

	// ErrMalformedSignature is returned when signature material has the
	// wrong shape: bad key or signature sizes, or a recovered payload
	// that is not exactly one hash long.
	ErrMalformedSignature = errors.New("spk: malformed signature")

	// ErrHashMismatch is returned when a signature opens cleanly but the
	// hash it carries does not match the payload it arrived with.
	ErrHashMismatch = errors.New("spk: signature does not match package contents")
)

// HashPayload returns the SHA-512 hash of the serialized archive bytes.
func HashPayload(payload []byte) []byte {
	sum := sha512.Sum512(payload)
	return sum[:]
}

// Sign produces an attached signature over hash: the raw signature
// followed by the hash itself, so the verifier recovers the signed value
// when opening it.
func Sign(priv ed25519.PrivateKey, hash []byte) []byte {
	sealed := make([]byte, 0, SignatureSize)
	sealed = append(sealed, ed25519.Sign(priv, hash)...)
	return append(sealed, hash...)
}

// Open authenticates sealed under pub and returns the recovered hash.
func Open(pub ed25519.PublicKey, sealed []byte) ([]byte, error) {
	if len(pub) != PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", ErrMalformedSignature, len(pub), PublicKeySize)
	}
	if len(sealed) != SignatureSize {
		return nil, fmt.Errorf("%w: signature is %d bytes, want %d", ErrMalformedSignature, len(sealed), SignatureSize)
	}

	msg := sealed[Overhead:]
	if !ed25519.Verify(pub, msg, sealed[:Overhead]) {
		return nil, ErrInvalidSignature
	}
	return msg, nil
}

// VerifyPayload opens sealed under pub and checks that the recovered hash
// matches a fresh hash of payload. Only when it returns nil may the
// payload be trusted for extraction.
func VerifyPayload(pub ed25519.PublicKey, sealed, payload []byte) ([]byte, error) {
	expected, err := Open(pub, sealed)
	if err != nil {
		return nil, err
	}

	actual := HashPayload(payload)
	if subtle.ConstantTimeCompare(expected, actual) != 1 {
		return nil, ErrHashMismatch
	}

	return actual, nil
}
