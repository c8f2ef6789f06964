//go:generate flatc --go --go-namespace fb -o internal schema/spk.fbs

// Package spk builds and verifies signed application packages.
//
// A package (.spk file) is a directory tree serialized into a typed
// archive, compressed with xz, and bound to an Ed25519 signature so that
// anyone holding only the corresponding public key can verify where the
// package came from. The key itself doubles as the package identity: the
// app ID shown to humans is the base32 encoding of the public key, so
// two packages with the same app ID claim the same author.
//
// # Quick Start
//
// Generate a key pair and pack a directory:
//
//	kp, err := spk.GenerateKeyPair()
//	if err != nil {
//	    return err
//	}
//	if err := spk.WriteKeyFile("app.key", kp); err != nil {
//	    return err
//	}
//	id, err := spk.Pack("./myapp", "app.key", "myapp.spk")
//
// Verify and extract a package:
//
//	id, err := spk.Unpack("myapp.spk", "./myapp-out")
//
// All signature and hash checks complete before a single file is
// written, so a forged or corrupted package leaves no trace on disk.
// Extraction itself is not transactional: a malformed entry deep in the
// tree aborts the unpack but keeps whatever valid siblings were already
// written.
//
// The container layout is a fixed magic marker followed by an xz stream
// whose decompressed form is a signature record and the serialized
// archive, both size-prefixed FlatBuffers messages.
package spk
