package spk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/spk/internal/archive"
	"github.com/meigma/spk/internal/sig"
	"github.com/meigma/spk/internal/wire"
	"github.com/meigma/spk/internal/xzstream"
)

// VerifyResult describes a package that passed signature verification.
type VerifyResult struct {
	// AppID identifies the signing key embedded in the package.
	AppID AppID

	// Payload is the digest of the serialized archive bytes, the value
	// the signature was opened against.
	Payload digest.Digest

	// PayloadSize is the size of the serialized archive in bytes.
	PayloadSize int64
}

// Unpack verifies the package at spkPath and extracts it to outDir,
// which must not already exist. The existence check runs before the
// package file is even opened. All signature and hash verification
// completes before the first output file is written; corruption or
// forgery detected up to that point leaves no trace on disk.
//
// Unpack returns the app ID of the key that signed the package.
func Unpack(spkPath, outDir string, opts ...Option) (AppID, error) {
	cfg := newConfig(opts)

	if _, err := os.Lstat(outDir); err == nil {
		return "", fmt.Errorf("output directory %s already exists", outDir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	res, root, err := verify(spkPath, &cfg)
	if err != nil {
		return "", err
	}

	if err := archive.Extract(root, outDir); err != nil {
		return "", fmt.Errorf("unpack %s: %w", spkPath, err)
	}

	cfg.log().Info("unpacked", "package", spkPath, "dir", outDir, "app_id", res.AppID)
	return res.AppID, nil
}

// Verify checks the package at spkPath without extracting anything.
func Verify(spkPath string, opts ...Option) (*VerifyResult, error) {
	cfg := newConfig(opts)
	res, _, err := verify(spkPath, &cfg)
	return res, err
}

// verify runs the read side of the pipeline up to a trusted archive:
// magic check, decompress, split, open the signature, recompute the
// payload hash, deserialize.
func verify(path string, cfg *config) (*VerifyResult, *archive.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	magic := make([]byte, len(magicNumber))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrNotAPackage)
	}
	if !bytes.Equal(magic, magicNumber) {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrNotAPackage)
	}

	// The child picks up reading where the magic check left off.
	stream, err := xzstream.StartDecompressor(cfg.decompress, f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	defer stream.Close()

	record, err := wire.ReadSizePrefixed(stream)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read signature record: %w", path, err)
	}
	publicKey, sealed, err := wire.ParseSignatureRecord(record)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %v", path, ErrMalformedSignature, err)
	}

	// Open the signature before draining the payload, so a forged
	// package fails without decompressing the rest of the stream.
	expected, err := sig.Open(publicKey, sealed)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	payload, err := io.ReadAll(stream)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	// The whole stream is drained; a compressor failure is fatal even
	// though the transfer looked complete.
	if err := stream.Close(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	actual := sig.HashPayload(payload)
	if !bytes.Equal(expected, actual) {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrHashMismatch)
	}

	root, err := wire.ParseArchive(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return &VerifyResult{
		AppID:       AppIDForPublicKey(publicKey),
		Payload:     digest.NewDigestFromBytes(digest.SHA512, actual),
		PayloadSize: int64(len(payload)),
	}, root, nil
}
