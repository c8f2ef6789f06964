package spk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meigma/spk/internal/archive"
	"github.com/meigma/spk/internal/sig"
	"github.com/meigma/spk/internal/wire"
	"github.com/meigma/spk/internal/xzstream"
)

// magicNumber identifies the container format. It is stored uncompressed
// at the start of every package and checked before anything else on
// unpack. The shape follows the PNG header: a high bit to catch 7-bit
// transports, the format name, and line-ending bytes to catch newline
// translation.
var magicNumber = []byte{0x8f, 's', 'p', 'k', '\r', '\n', 0x1a, '\n'}

// Pack builds a signed package from the directory at dir, signing it
// with the key pair in keyPath and writing the container to outPath.
//
// The key material is validated first so a bad key file fails before any
// filesystem work. The whole tree is then collected and serialized in
// memory, hashed, signed, and streamed through the external compressor
// into the output file. The container is written atomically: a temporary
// file in the destination directory, renamed only on success.
//
// Pack returns the app ID of the signing key.
func Pack(dir, keyPath, outPath string, opts ...Option) (AppID, error) {
	cfg := newConfig(opts)

	kp, err := LoadKeyFile(keyPath)
	if err != nil {
		return "", err
	}

	root, err := archive.Collect(dir, cfg.log())
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", dir, err)
	}

	payload := wire.MarshalArchive(root)
	hash := sig.HashPayload(payload)
	record := wire.MarshalSignatureRecord(kp.Public, sig.Sign(kp.Private, hash))

	if err := emitContainer(outPath, record, payload, cfg.compress); err != nil {
		return "", fmt.Errorf("write package %s: %w", outPath, err)
	}

	cfg.log().Info("packed", "dir", dir, "package", outPath,
		"app_id", kp.AppID(), "payload_size", len(payload))
	return kp.AppID(), nil
}

// emitContainer writes magic + compressed(record + payload) to path via
// a temporary file renamed into place on success.
func emitContainer(path string, record, payload []byte, compress []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".spk-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(magicNumber); err != nil {
		return err
	}

	stream, err := xzstream.StartCompressor(compress, tmp)
	if err != nil {
		return err
	}
	if _, err = stream.Write(record); err != nil {
		stream.Close()
		return err
	}
	if _, err = stream.Write(payload); err != nil {
		stream.Close()
		return err
	}
	if err = stream.Close(); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
