//go:build arm || 386

// lzma and xz do not compile for 32bit systems
package compress

import (
	"errors"
	"io"
)

var errNot32Bit = errors.New("not supported on 32 bit systems")

func (c *CompressorLzma) NewWriter(_ io.Writer) (io.WriteCloser, error) {
	return nil, errNot32Bit
}

func (c *CompressorLzma) NewReader(_ io.Reader) (io.ReadCloser, error) {
	return nil, errNot32Bit
}

func (c *CompressorXz) NewWriter(_ io.Writer) (io.WriteCloser, error) {
	return nil, errNot32Bit
}

func (c *CompressorXz) NewReader(_ io.Reader) (io.ReadCloser, error) {
	return nil, errNot32Bit
}
