package spk

import (
	"errors"

	"github.com/meigma/spk/internal/archive"
	"github.com/meigma/spk/internal/base32"
	"github.com/meigma/spk/internal/sig"
	"github.com/meigma/spk/internal/wire"
	"github.com/meigma/spk/internal/xzstream"
)

// ErrNotAPackage is returned when a file does not start with the spk
// magic marker. It is checked before the decompressor is ever invoked.
var ErrNotAPackage = errors.New("spk: not a package (bad magic number)")

// Errors re-exported from internal packages.
var (
	// ErrInvalidEncoding is returned when an app ID fails base32 decoding.
	ErrInvalidEncoding = base32.ErrInvalidEncoding

	// ErrInvalidSignature is returned when a package signature fails to open
	// under its embedded public key.
	ErrInvalidSignature = sig.ErrInvalidSignature

	// ErrMalformedSignature is returned when signature material has the
	// wrong shape.
	ErrMalformedSignature = sig.ErrMalformedSignature

	// ErrHashMismatch is returned when a genuine signature does not match
	// the package contents it arrived with.
	ErrHashMismatch = sig.ErrHashMismatch

	// ErrMalformedArchive is returned when archive structure or entry names
	// fail validation.
	ErrMalformedArchive = archive.ErrMalformedArchive

	// ErrInvalidKeyFile is returned when a key file cannot be parsed or
	// holds keys of the wrong size.
	ErrInvalidKeyFile = wire.ErrInvalidKeyFile

	// ErrCompressorFailed is returned when the external compressor exits
	// non-zero or dies on a signal.
	ErrCompressorFailed = xzstream.ErrCompressorFailed
)
