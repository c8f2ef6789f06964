// Package wire serializes the spk structured messages.
//
// All three top-level messages (key file, signature record, archive) are
// size-prefixed FlatBuffers, so a consumer can split them out of a byte
// stream knowing only the four-byte little-endian length prefix. Parsing
// treats input as untrusted: buffers are bounds-checked against their
// prefix and accessor panics are converted into errors.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/spk/internal/archive"
	"github.com/meigma/spk/internal/fb"
)

// ErrInvalidKeyFile is returned when a key file cannot be parsed or holds
// keys of the wrong size.
var ErrInvalidKeyFile = errors.New("spk: invalid key file")

// maxDepth bounds archive nesting during parsing. A crafted buffer can
// aim table offsets at an ancestor to form a cycle; the depth limit turns
// that into a malformed-archive error instead of unbounded recursion.
const maxDepth = 512

// ReadSizePrefixed reads one size-prefixed message from r and returns it
// including its length prefix, ready for the size-prefixed root accessors.
func ReadSizePrefixed(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(prefix[:])

	buf := make([]byte, 4+int(n))
	copy(buf, prefix[:])
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		return nil, err
	}
	return buf, nil
}

// checkPrefix verifies buf holds exactly one size-prefixed message.
func checkPrefix(buf []byte) error {
	if len(buf) < 4 {
		return errors.New("short buffer")
	}
	if n := binary.LittleEndian.Uint32(buf); int(n) != len(buf)-4 {
		return fmt.Errorf("length prefix %d does not match %d payload bytes", n, len(buf)-4)
	}
	return nil
}

// MarshalArchive serializes the children of root as a size-prefixed
// Archive message. These are exactly the bytes that get hashed and
// signed.
func MarshalArchive(root *archive.Entry) []byte {
	b := flatbuffers.NewBuilder(1024)
	entries := buildChildren(b, root.Children)
	fb.ArchiveStart(b)
	fb.ArchiveAddEntries(b, entries)
	fb.FinishSizePrefixedArchiveBuffer(b, fb.ArchiveEnd(b))
	return b.FinishedBytes()
}

func buildChildren(b *flatbuffers.Builder, children []archive.Child) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(children))
	for i, child := range children {
		offsets[i] = buildEntry(b, child.Name, child.Entry)
	}

	// Vectors are built back to front.
	fb.ArchiveStartEntriesVector(b, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return b.EndVector(len(offsets))
}

func buildEntry(b *flatbuffers.Builder, name string, e *archive.Entry) flatbuffers.UOffsetT {
	var contentOffset, childrenOffset flatbuffers.UOffsetT
	hasContent := false
	if e.Kind == archive.KindDirectory {
		childrenOffset = buildChildren(b, e.Children)
	} else {
		contentOffset = b.CreateByteVector(e.Content)
		hasContent = true
	}
	nameOffset := b.CreateString(name)

	fb.EntryStart(b)
	fb.EntryAddName(b, nameOffset)
	fb.EntryAddKind(b, fb.EntryKind(e.Kind))
	if hasContent {
		fb.EntryAddContent(b, contentOffset)
	} else {
		fb.EntryAddChildren(b, childrenOffset)
	}
	return fb.EntryEnd(b)
}

// ParseArchive deserializes a size-prefixed Archive message into an Entry
// tree rooted at a synthetic directory.
func ParseArchive(buf []byte) (root *archive.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = fmt.Errorf("%w: %v", archive.ErrMalformedArchive, r)
		}
	}()

	if prefixErr := checkPrefix(buf); prefixErr != nil {
		return nil, fmt.Errorf("%w: %s", archive.ErrMalformedArchive, prefixErr)
	}

	msg := fb.GetSizePrefixedRootAsArchive(buf, 0)
	children, err := parseChildren(msg.EntriesLength(), func(obj *fb.Entry, j int) bool {
		return msg.Entries(obj, j)
	}, 0)
	if err != nil {
		return nil, err
	}
	return &archive.Entry{Kind: archive.KindDirectory, Children: children}, nil
}

func parseChildren(n int, at func(*fb.Entry, int) bool, depth int) ([]archive.Child, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting exceeds %d levels", archive.ErrMalformedArchive, maxDepth)
	}

	children := make([]archive.Child, 0, n)
	for j := 0; j < n; j++ {
		var fbEntry fb.Entry
		if !at(&fbEntry, j) {
			return nil, fmt.Errorf("%w: unreadable entry", archive.ErrMalformedArchive)
		}
		entry, err := parseEntry(&fbEntry, depth)
		if err != nil {
			return nil, err
		}
		children = append(children, archive.Child{Name: string(fbEntry.Name()), Entry: entry})
	}
	return children, nil
}

func parseEntry(fbEntry *fb.Entry, depth int) (*archive.Entry, error) {
	switch fbEntry.Kind() {
	case fb.EntryKindRegular, fb.EntryKindExecutable, fb.EntryKindSymlink:
		return &archive.Entry{
			Kind:    archive.Kind(fbEntry.Kind()),
			Content: fbEntry.ContentBytes(),
		}, nil
	case fb.EntryKindDirectory:
		children, err := parseChildren(fbEntry.ChildrenLength(), fbEntry.Children, depth+1)
		if err != nil {
			return nil, err
		}
		return &archive.Entry{Kind: archive.KindDirectory, Children: children}, nil
	default:
		return nil, fmt.Errorf("%w: unknown entry kind %d", archive.ErrMalformedArchive, fbEntry.Kind())
	}
}

// MarshalSignatureRecord serializes a public key and attached signature
// as a size-prefixed SignatureRecord message.
func MarshalSignatureRecord(publicKey, signature []byte) []byte {
	b := flatbuffers.NewBuilder(256)
	sigOffset := b.CreateByteVector(signature)
	keyOffset := b.CreateByteVector(publicKey)
	fb.SignatureRecordStart(b)
	fb.SignatureRecordAddPublicKey(b, keyOffset)
	fb.SignatureRecordAddSignature(b, sigOffset)
	fb.FinishSizePrefixedSignatureRecordBuffer(b, fb.SignatureRecordEnd(b))
	return b.FinishedBytes()
}

// ParseSignatureRecord deserializes a size-prefixed SignatureRecord
// message. Field sizes are the caller's concern; only structure is
// checked here.
func ParseSignatureRecord(buf []byte) (publicKey, signature []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			publicKey, signature = nil, nil
			err = fmt.Errorf("malformed signature record: %v", r)
		}
	}()

	if prefixErr := checkPrefix(buf); prefixErr != nil {
		return nil, nil, fmt.Errorf("malformed signature record: %s", prefixErr)
	}

	msg := fb.GetSizePrefixedRootAsSignatureRecord(buf, 0)
	return msg.PublicKeyBytes(), msg.SignatureBytes(), nil
}

// MarshalKeyFile serializes a key pair as a size-prefixed KeyFile
// message.
func MarshalKeyFile(publicKey, privateKey []byte) []byte {
	b := flatbuffers.NewBuilder(256)
	privOffset := b.CreateByteVector(privateKey)
	pubOffset := b.CreateByteVector(publicKey)
	fb.KeyFileStart(b)
	fb.KeyFileAddPublicKey(b, pubOffset)
	fb.KeyFileAddPrivateKey(b, privOffset)
	fb.FinishSizePrefixedKeyFileBuffer(b, fb.KeyFileEnd(b))
	return b.FinishedBytes()
}

// ParseKeyFile deserializes a size-prefixed KeyFile message.
func ParseKeyFile(buf []byte) (publicKey, privateKey []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			publicKey, privateKey = nil, nil
			err = fmt.Errorf("%w: %v", ErrInvalidKeyFile, r)
		}
	}()

	if prefixErr := checkPrefix(buf); prefixErr != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidKeyFile, prefixErr)
	}

	msg := fb.GetSizePrefixedRootAsKeyFile(buf, 0)
	return msg.PublicKeyBytes(), msg.PrivateKeyBytes(), nil
}
