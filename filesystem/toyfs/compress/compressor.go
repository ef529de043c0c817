// Package compress provides the stream codecs used when moving files between the
// host and a virtual disk.
package compress

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrUnknown no compressor is registered under the requested name
var ErrUnknown = errors.New("unknown compression")

// Compressor wraps a stream so that what is written is compressed and what is
// read is decompressed
type Compressor interface {
	Name() string
	// Extension the host file suffix the compressor is chosen for, including the dot
	Extension() string
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
}

var compressors = []Compressor{
	&CompressorGzip{},
	&CompressorZstd{},
	&CompressorLz4{},
	&CompressorXz{},
	&CompressorLzma{},
}

// ForName returns the compressor called name, for example "gzip" or "zstd"
func ForName(name string) (Compressor, error) {
	for _, c := range compressors {
		if strings.EqualFold(c.Name(), name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// ForPath picks a compressor from the extension of a host path.
// Returns nil if the file is not compressed.
func ForPath(p string) Compressor {
	ext := strings.ToLower(filepath.Ext(p))
	for _, c := range compressors {
		if c.Extension() == ext {
			return c
		}
	}
	return nil
}

// Names of every registered compressor
func Names() []string {
	names := make([]string, 0, len(compressors))
	for _, c := range compressors {
		names = append(names, c.Name())
	}
	return names
}

// CompressorGzip gzip streams, .gz
type CompressorGzip struct {
	// Level compression level, 0 uses the gzip default
	Level int
}

func (c *CompressorGzip) Name() string      { return "gzip" }
func (c *CompressorGzip) Extension() string { return ".gz" }

func (c *CompressorGzip) NewWriter(w io.Writer) (io.WriteCloser, error) {
	if c.Level == 0 {
		return gzip.NewWriter(w), nil
	}
	gw, err := gzip.NewWriterLevel(w, c.Level)
	if err != nil {
		return nil, fmt.Errorf("error creating gzip compressor: %w", err)
	}
	return gw, nil
}

func (c *CompressorGzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("error creating gzip decompressor: %w", err)
	}
	return gr, nil
}

// CompressorZstd zstandard streams, .zst
type CompressorZstd struct{}

func (c *CompressorZstd) Name() string      { return "zstd" }
func (c *CompressorZstd) Extension() string { return ".zst" }

func (c *CompressorZstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("error creating zstd compressor: %w", err)
	}
	return enc, nil
}

func (c *CompressorZstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("error creating zstd decompressor: %w", err)
	}
	return &zstdReader{dec}, nil
}

// zstdReader adapts the decoder, whose Close returns nothing
type zstdReader struct {
	*zstd.Decoder
}

func (z *zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

// CompressorLz4 lz4 frames, .lz4
type CompressorLz4 struct{}

func (c *CompressorLz4) Name() string      { return "lz4" }
func (c *CompressorLz4) Extension() string { return ".lz4" }

func (c *CompressorLz4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (c *CompressorLz4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// CompressorXz xz streams, .xz
type CompressorXz struct{}

func (c *CompressorXz) Name() string      { return "xz" }
func (c *CompressorXz) Extension() string { return ".xz" }

// CompressorLzma lzma streams, .lzma
type CompressorLzma struct{}

func (c *CompressorLzma) Name() string      { return "lzma" }
func (c *CompressorLzma) Extension() string { return ".lzma" }

// readCloser closes r if it can be closed
func readCloser(r io.Reader) io.ReadCloser {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}
