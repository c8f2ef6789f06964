package spk

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/spk/internal/testutil"
)

// cat as the compressor keeps the round-trip tests independent of an
// installed xz and makes the compressed region byte-addressable.
var catOpts = []Option{WithCompressor("cat"), WithDecompressor("cat")}

func writeTestKey(t *testing.T) (string, *KeyPair) {
	t.Helper()
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.key")
	require.NoError(t, WriteKeyFile(path, kp))
	return path, kp
}

func packTestTree(t *testing.T, nodes map[string]testutil.Node) (spkPath string, id AppID) {
	t.Helper()
	keyPath, _ := writeTestKey(t)
	dir := t.TempDir()
	testutil.WriteTree(t, dir, nodes)

	spkPath = filepath.Join(t.TempDir(), "app.spk")
	id, err := Pack(dir, keyPath, spkPath, catOpts...)
	require.NoError(t, err)
	return spkPath, id
}

func TestPackUnpackRoundTrip(t *testing.T) {
	t.Parallel()

	spkPath, packID := packTestTree(t, map[string]testutil.Node{
		"readme.txt":     {Content: "hello world"},
		"bin/tool":       {Content: "#!/bin/sh\nexit 0\n", Exec: true},
		"link":           {Symlink: "readme.txt"},
		"sub/nested.txt": {Content: "nested content"},
	})

	outDir := filepath.Join(t.TempDir(), "out")
	unpackID, err := Unpack(spkPath, outDir, catOpts...)
	require.NoError(t, err)
	assert.Equal(t, packID, unpackID)

	got, err := os.ReadFile(filepath.Join(outDir, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	info, err := os.Stat(filepath.Join(outDir, "bin", "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111)

	target, err := os.Readlink(filepath.Join(outDir, "link"))
	require.NoError(t, err)
	assert.Equal(t, "readme.txt", target)

	got, err = os.ReadFile(filepath.Join(outDir, "sub", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested content", string(got))
}

func TestPackUnpackWithXz(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("xz"); err != nil {
		t.Skip("xz not installed")
	}

	keyPath, _ := writeTestKey(t)
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]testutil.Node{
		"data.txt": {Content: strings.Repeat("compressible ", 1000)},
	})

	spkPath := filepath.Join(t.TempDir(), "app.spk")
	_, err := Pack(dir, keyPath, spkPath)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	_, err = Unpack(spkPath, outDir)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, "data.txt"))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("compressible ", 1000), string(got))
}

func TestUnpackRejectsBadMagic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bogus.spk")
	require.NoError(t, os.WriteFile(path, []byte("this is not a package at all"), 0o644))

	_, err := Unpack(path, filepath.Join(t.TempDir(), "out"), catOpts...)
	require.ErrorIs(t, err, ErrNotAPackage)

	// Too short for a magic marker is the same failure.
	require.NoError(t, os.WriteFile(path, []byte{0x8f}, 0o644))
	_, err = Unpack(path, filepath.Join(t.TempDir(), "out"), catOpts...)
	require.ErrorIs(t, err, ErrNotAPackage)
}

func TestUnpackRefusesExistingOutputDir(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()

	// The package path does not even exist; the output check fires first.
	_, err := Unpack(filepath.Join(t.TempDir(), "missing.spk"), outDir, catOpts...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUnpackDetectsCorruption(t *testing.T) {
	t.Parallel()

	spkPath, _ := packTestTree(t, map[string]testutil.Node{
		"file.txt": {Content: "some content to corrupt"},
	})

	container, err := os.ReadFile(spkPath)
	require.NoError(t, err)

	// Flip one byte at a time across the compressed region and make sure
	// every corruption is caught before anything reaches the disk.
	for i := len(magicNumber); i < len(container); i += 7 {
		corrupted := append([]byte(nil), container...)
		corrupted[i] ^= 0x01

		badPath := filepath.Join(t.TempDir(), "bad.spk")
		require.NoError(t, os.WriteFile(badPath, corrupted, 0o644))

		outDir := filepath.Join(t.TempDir(), "out")
		_, err := Unpack(badPath, outDir, catOpts...)
		require.Error(t, err, "flipped byte %d went undetected", i)

		_, statErr := os.Stat(outDir)
		require.ErrorIs(t, statErr, os.ErrNotExist, "flipped byte %d left output behind", i)
	}
}

func TestUnpackReportsCompressorFailure(t *testing.T) {
	t.Parallel()

	spkPath, _ := packTestTree(t, map[string]testutil.Node{
		"file.txt": {Content: "content"},
	})

	_, err := Unpack(spkPath, filepath.Join(t.TempDir(), "out"),
		WithDecompressor("sh", "-c", "cat; exit 9"))
	require.ErrorIs(t, err, ErrCompressorFailed)
}

func TestPackRejectsBadKeyFileBeforeReadingTree(t *testing.T) {
	t.Parallel()

	keyPath := filepath.Join(t.TempDir(), "bad.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("garbage"), 0o600))

	// The directory does not exist; the key check must fail first.
	_, err := Pack(filepath.Join(t.TempDir(), "missing"), keyPath, filepath.Join(t.TempDir(), "out.spk"), catOpts...)
	require.ErrorIs(t, err, ErrInvalidKeyFile)
}

func TestPackReportsCompressorFailure(t *testing.T) {
	t.Parallel()

	keyPath, _ := writeTestKey(t)
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]testutil.Node{"f": {Content: "x"}})

	out := filepath.Join(t.TempDir(), "app.spk")
	_, err := Pack(dir, keyPath, out,
		WithCompressor("sh", "-c", "cat >/dev/null; exit 2"), WithDecompressor("cat"))
	require.ErrorIs(t, err, ErrCompressorFailed)

	// The failed pack left no output behind.
	_, statErr := os.Stat(out)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestVerifyWithoutExtraction(t *testing.T) {
	t.Parallel()

	spkPath, packID := packTestTree(t, map[string]testutil.Node{
		"file.txt": {Content: "verify me"},
	})

	res, err := Verify(spkPath, catOpts...)
	require.NoError(t, err)
	assert.Equal(t, packID, res.AppID)
	assert.Equal(t, "sha512", string(res.Payload.Algorithm()))
	assert.Positive(t, res.PayloadSize)
}

func TestAppIDConsistency(t *testing.T) {
	t.Parallel()

	keyPath, kp := writeTestKey(t)

	loaded, err := LoadKeyFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, kp.AppID(), loaded.AppID())

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]testutil.Node{"f": {Content: "x"}})
	spkPath := filepath.Join(t.TempDir(), "app.spk")

	packID, err := Pack(dir, keyPath, spkPath, catOpts...)
	require.NoError(t, err)
	assert.Equal(t, kp.AppID(), packID)

	unpackID, err := Unpack(spkPath, filepath.Join(t.TempDir(), "out"), catOpts...)
	require.NoError(t, err)
	assert.Equal(t, kp.AppID(), unpackID)

	// The ID decodes back to the public key.
	pub, err := ParseAppID(string(packID))
	require.NoError(t, err)
	assert.Equal(t, []byte(kp.Public), pub)
}

func TestLoadKeyFileRejectsWrongSizes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "short.key")
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	// A key file with a truncated public key parses structurally but
	// fails the size check.
	truncated := &KeyPair{Public: kp.Public[:16], Private: kp.Private}
	require.NoError(t, WriteKeyFile(path, truncated))

	_, err = LoadKeyFile(path)
	require.ErrorIs(t, err, ErrInvalidKeyFile)
}
