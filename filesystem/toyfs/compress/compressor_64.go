//go:build !arm && !386

package compress

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

func (c *CompressorLzma) NewWriter(w io.Writer) (io.WriteCloser, error) {
	lz, err := lzma.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("error creating lzma compressor: %w", err)
	}
	return lz, nil
}

func (c *CompressorLzma) NewReader(r io.Reader) (io.ReadCloser, error) {
	lz, err := lzma.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("error creating lzma decompressor: %w", err)
	}
	return readCloser(lz), nil
}

func (c *CompressorXz) NewWriter(w io.Writer) (io.WriteCloser, error) {
	xzWriter, err := xz.NewWriterConfig(w, xz.WriterConfig{
		Workers: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating xz compressor: %w", err)
	}
	return xzWriter, nil
}

func (c *CompressorXz) NewReader(r io.Reader) (io.ReadCloser, error) {
	xzReader, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("error creating xz decompressor: %w", err)
	}
	return readCloser(xzReader), nil
}
