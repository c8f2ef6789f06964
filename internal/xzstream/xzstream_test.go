package xzstream

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cat is a convenient identity "compressor" for exercising the pipe
// plumbing without depending on xz.
var catArgs = []string{"cat"}

func TestCompressorWritesThrough(t *testing.T) {
	t.Parallel()

	dst, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	s, err := StartCompressor(catArgs, dst)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("0123456789abcdef"), 4096)
	_, err = s.Write(payload)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, dst.Close())

	got, err := os.ReadFile(dst.Name())
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecompressorReadsThrough(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("stream me"), 1000)
	path := filepath.Join(t.TempDir(), "in")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	src, err := os.Open(path)
	require.NoError(t, err)
	defer src.Close()

	s, err := StartDecompressor(catArgs, src)
	require.NoError(t, err)

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, payload, got)
}

func TestDecompressorReadsFromCurrentOffset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in")
	require.NoError(t, os.WriteFile(path, []byte("HEADERpayload"), 0o644))

	src, err := os.Open(path)
	require.NoError(t, err)
	defer src.Close()

	header := make([]byte, 6)
	_, err = io.ReadFull(src, header)
	require.NoError(t, err)

	s, err := StartDecompressor(catArgs, src)
	require.NoError(t, err)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, "payload", string(got))
}

func TestCloseReportsNonZeroExit(t *testing.T) {
	t.Parallel()

	dst, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer dst.Close()

	s, err := StartCompressor([]string{"sh", "-c", "cat >/dev/null; echo boom >&2; exit 3"}, dst)
	require.NoError(t, err)
	_, err = s.Write([]byte("data"))
	require.NoError(t, err)

	err = s.Close()
	require.ErrorIs(t, err, ErrCompressorFailed)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "exit status 3")

	// A second Close does not re-report the failure.
	require.NoError(t, s.Close())
}

func TestStartRejectsMissingCommand(t *testing.T) {
	t.Parallel()

	dst, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer dst.Close()

	_, err = StartCompressor([]string{"definitely-not-a-real-compressor"}, dst)
	require.Error(t, err)
}

func TestXzRoundTrip(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("xz"); err != nil {
		t.Skip("xz not installed")
	}

	dir := t.TempDir()
	compressed := filepath.Join(dir, "data.xz")
	payload := bytes.Repeat([]byte("compress me well "), 2048)

	dst, err := os.Create(compressed)
	require.NoError(t, err)
	c, err := StartCompressor(DefaultCompress, dst)
	require.NoError(t, err)
	_, err = c.Write(payload)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, dst.Close())

	info, err := os.Stat(compressed)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(payload)))

	src, err := os.Open(compressed)
	require.NoError(t, err)
	defer src.Close()
	d, err := StartDecompressor(DefaultDecompress, src)
	require.NoError(t, err)
	got, err := io.ReadAll(d)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Equal(t, payload, got)
}
