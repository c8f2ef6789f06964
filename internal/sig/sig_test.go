package sig

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub, priv
}

func TestSignOpenRoundTrip(t *testing.T) {
	t.Parallel()

	pub, priv := newKeyPair(t)
	payload := []byte("serialized archive bytes")
	hash := HashPayload(payload)

	sealed := Sign(priv, hash)
	assert.Len(t, sealed, SignatureSize)

	recovered, err := Open(pub, sealed)
	require.NoError(t, err)
	assert.Equal(t, hash, recovered)
}

func TestOpenRejectsTampering(t *testing.T) {
	t.Parallel()

	pub, priv := newKeyPair(t)
	sealed := Sign(priv, HashPayload([]byte("payload")))

	for _, i := range []int{0, Overhead - 1, Overhead, SignatureSize - 1} {
		tampered := append([]byte(nil), sealed...)
		tampered[i] ^= 0x01
		_, err := Open(pub, tampered)
		require.ErrorIs(t, err, ErrInvalidSignature, "flipped byte %d", i)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	_, priv := newKeyPair(t)
	otherPub, _ := newKeyPair(t)

	sealed := Sign(priv, HashPayload([]byte("payload")))
	_, err := Open(otherPub, sealed)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestOpenRejectsMalformedSizes(t *testing.T) {
	t.Parallel()

	pub, priv := newKeyPair(t)
	sealed := Sign(priv, HashPayload([]byte("payload")))

	_, err := Open(pub, sealed[:SignatureSize-1])
	require.ErrorIs(t, err, ErrMalformedSignature)

	_, err = Open(pub, append(append([]byte(nil), sealed...), 0))
	require.ErrorIs(t, err, ErrMalformedSignature)

	_, err = Open(pub[:16], sealed)
	require.ErrorIs(t, err, ErrMalformedSignature)
}

func TestVerifyPayload(t *testing.T) {
	t.Parallel()

	pub, priv := newKeyPair(t)
	payload := []byte("the archive")
	sealed := Sign(priv, HashPayload(payload))

	hash, err := VerifyPayload(pub, sealed, payload)
	require.NoError(t, err)
	assert.Equal(t, HashPayload(payload), hash)

	_, err = VerifyPayload(pub, sealed, []byte("tampered archive"))
	require.ErrorIs(t, err, ErrHashMismatch)

	_, err = VerifyPayload(pub, sealed, payload[:len(payload)-1])
	require.ErrorIs(t, err, ErrHashMismatch)
}
