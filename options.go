package spk

import (
	"log/slog"

	"github.com/meigma/spk/internal/xzstream"
)

// config holds configuration shared by pack, unpack and verify.
type config struct {
	logger     *slog.Logger
	compress   []string
	decompress []string
}

// Option configures a pack, unpack or verify operation.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		compress:   xzstream.DefaultCompress,
		decompress: xzstream.DefaultDecompress,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WithLogger sets the logger used for operational messages, such as
// warnings about skipped irregular files during packing.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithCompressor overrides the command used to compress the package
// payload during packing. The command must read uncompressed bytes from
// stdin and write the compressed stream to stdout.
func WithCompressor(argv ...string) Option {
	return func(cfg *config) {
		cfg.compress = argv
	}
}

// WithDecompressor overrides the command used to decompress the package
// payload during unpacking. The command must read the compressed stream
// from stdin and write decompressed bytes to stdout.
func WithDecompressor(argv ...string) Option {
	return func(cfg *config) {
		cfg.decompress = argv
	}
}
