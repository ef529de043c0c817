// Package backend provides the byte-addressed storage a virtual disk lives on.
//
// A Storage is a fixed-size array of bytes. The filesystem layered on top of it
// treats it as an array of equally sized blocks, addressed by byte offset, and
// keeps no metadata of its own on it.
package backend

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a read or write would cross the end of the storage
var ErrOutOfBounds = errors.New("access beyond end of storage")

// Storage is the host side of a virtual disk.
type Storage interface {
	ReadAt(p []byte, off int64) (n int, err error)
	WriteAt(p []byte, off int64) (n int, err error)
	Close() error
	// Size returns the usable size of the storage in bytes.
	Size() int64
}

// checkBounds makes sure [off, off+length) is inside a storage of the given size
func checkBounds(size, off int64, length int) error {
	if off < 0 || off+int64(length) > size {
		return fmt.Errorf("%w: offset %d length %d size %d", ErrOutOfBounds, off, length, size)
	}
	return nil
}

// zeroChunk is the largest buffer used when clearing storage
const zeroChunk = 64 * 1024

// Zero overwrites length bytes starting at off with zeros.
func Zero(s Storage, off, length int64) error {
	if length <= 0 {
		return nil
	}
	buf := make([]byte, min(length, zeroChunk))
	for length > 0 {
		n := min(length, int64(len(buf)))
		wrote, err := s.WriteAt(buf[:n], off)
		if err != nil {
			return fmt.Errorf("could not zero %d bytes at offset %d: %w", n, off, err)
		}
		if int64(wrote) != n {
			return fmt.Errorf("zeroed %d bytes instead of %d at offset %d", wrote, n, off)
		}
		off += n
		length -= n
	}
	return nil
}
