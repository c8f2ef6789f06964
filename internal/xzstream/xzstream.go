// Package xzstream connects pack/unpack byte streams to an external
// compressor child process through a single unidirectional pipe.
//
// The far side of the transfer is a caller-provided file: when
// compressing, the child writes its output straight to the destination
// file while the caller feeds uncompressed bytes into the pipe; when
// decompressing, the child reads straight from the source file while the
// caller drains decompressed bytes from the pipe. Backpressure falls out
// of pipe semantics, so memory during the transfer is bounded by the
// pipe buffer rather than the payload.
package xzstream

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrCompressorFailed is returned when the child process exits non-zero
// or dies on a signal, even when the byte transfer itself appeared to
// complete.
var ErrCompressorFailed = errors.New("spk: compressor failed")

// Default child commands. xz reads stdin and writes stdout in both
// directions.
var (
	DefaultCompress   = []string{"xz", "-zc"}
	DefaultDecompress = []string{"xz", "-dc"}
)

// Stream is one end of a running compressor pipeline. Exactly one of
// Read or Write is meaningful, matching the direction it was started in.
type Stream struct {
	pipe   *os.File
	cmd    *exec.Cmd
	stderr bytes.Buffer
	closed bool
}

// StartCompressor launches argv with its stdout wired to dst. Bytes
// written to the returned stream are fed to the child's stdin.
func StartCompressor(argv []string, dst *os.File) (*Stream, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	s := &Stream{pipe: w}
	s.cmd = exec.Command(argv[0], argv[1:]...)
	s.cmd.Stdin = r
	s.cmd.Stdout = dst
	s.cmd.Stderr = &s.stderr

	if err := s.cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	// The child holds its own duplicate of the read end.
	r.Close()

	return s, nil
}

// StartDecompressor launches argv with its stdin wired to src, reading
// from src's current offset. Bytes read from the returned stream are the
// child's decompressed output.
func StartDecompressor(argv []string, src *os.File) (*Stream, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	s := &Stream{pipe: r}
	s.cmd = exec.Command(argv[0], argv[1:]...)
	s.cmd.Stdin = src
	s.cmd.Stdout = w
	s.cmd.Stderr = &s.stderr

	if err := s.cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	w.Close()

	return s, nil
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.pipe.Read(p)
}

func (s *Stream) Write(p []byte) (int, error) {
	return s.pipe.Write(p)
}

// Close closes this side of the pipe first, in case the child is blocked
// on it, then waits for the child and converts a failed exit into
// ErrCompressorFailed. Close reports the child's status only once;
// further calls return nil.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.pipe.Close()
	if err := s.cmd.Wait(); err != nil {
		detail := err.Error()
		if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
			detail += ": " + msg
		}
		return fmt.Errorf("%w: %s: %s", ErrCompressorFailed, s.cmd.Path, detail)
	}
	return closeErr
}
