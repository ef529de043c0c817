package toyfs

import (
	"fmt"
	"io"

	"github.com/vdisk/vdisk/filesystem"
)

// File is an open descriptor wrapped in the standard io interfaces
type File struct {
	fs   *FileSystem
	fd   int
	name string
}

var _ filesystem.File = (*File)(nil)

// OpenFile opens p like Open and returns a handle to the new descriptor
func (fs *FileSystem) OpenFile(p string, mode Mode) (*File, error) {
	fd, err := fs.Open(p, mode)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, fd: fd, name: p}, nil
}

// Fd the descriptor behind the handle
func (fl *File) Fd() int {
	return fl.fd
}

// Name the path the file was opened with
func (fl *File) Name() string {
	return fl.name
}

// Read reads up to len(b) bytes. Returns io.EOF once the cursor reaches the end of
// the file.
func (fl *File) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	data, err := fl.fs.Read(fl.fd, len(b))
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, io.EOF
	}
	return copy(b, data), nil
}

// Write writes all of b or nothing
func (fl *File) Write(b []byte) (int, error) {
	return fl.fs.Write(fl.fd, b)
}

// Seek sets the offset for the next Read or Write, interpreted according to whence
func (fl *File) Seek(offset int64, whence int) (int64, error) {
	d, in, err := fl.fs.descriptor("seek", fl.fd)
	if err != nil {
		return 0, err
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = d.cursor + offset
	case io.SeekEnd:
		pos = in.size + offset
	default:
		return 0, fdError("seek", fl.fd, fmt.Errorf("%w: unknown whence %d", ErrInvalidOffset, whence))
	}
	if err := fl.fs.Seek(fl.fd, pos); err != nil {
		return 0, err
	}
	return pos, nil
}

// Close releases the descriptor
func (fl *File) Close() error {
	return fl.fs.Close(fl.fd)
}
