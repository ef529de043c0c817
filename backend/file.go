package backend

import (
	"errors"
	"fmt"
	"os"
)

var errClosed = errors.New("storage is closed")

// fileSectorSize regular host files are byte addressable
const fileSectorSize int64 = 1

// File is a Storage backed by a host file or block device.
type File struct {
	file *os.File
	size int64
	// sectorSize logical sector size of the device, 1 for regular files
	sectorSize int64
}

// CreateFile prepares the host file at p as a zeroed storage of size bytes.
//
// A regular file is created or truncated, then extended to size. Where the platform
// supports it the space is preallocated so that later writes cannot fail for lack of
// host disk space. A block device is used in place: it must be at least size bytes
// and the first size bytes are overwritten with zeros.
func CreateFile(p string, size int64) (*File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid storage size %d", size)
	}
	info, err := os.Stat(p)
	switch {
	case err == nil && info.Mode()&os.ModeDevice != 0:
		return createOnDevice(p, size)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("could not stat %s: %w", p, err)
	}

	f, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not create backing file %s: %w", p, err)
	}
	// a freshly truncated file reads back as zeros everywhere
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not size backing file %s to %d bytes: %w", p, size, err)
	}
	if err := preallocate(f, size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not preallocate backing file %s: %w", p, err)
	}
	return &File{file: f, size: size, sectorSize: fileSectorSize}, nil
}

func createOnDevice(p string, size int64) (*File, error) {
	f, err := os.OpenFile(p, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open device %s: %w", p, err)
	}
	devSize, err := getBlockDeviceSize(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not get size of device %s: %w", p, err)
	}
	if devSize < size {
		_ = f.Close()
		return nil, fmt.Errorf("device %s has %d bytes, requested %d", p, devSize, size)
	}
	logical, _, err := getSectorSizes(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not get sector size of device %s: %w", p, err)
	}
	dev := &File{file: f, size: size, sectorSize: logical}
	if err := Zero(dev, 0, size); err != nil {
		_ = f.Close()
		return nil, err
	}
	return dev, nil
}

// ReadAt implements io.ReaderAt
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.file == nil {
		return 0, errClosed
	}
	if err := checkBounds(f.size, off, len(p)); err != nil {
		return 0, err
	}
	n, err := f.file.ReadAt(p, off)
	if err != nil {
		return n, fmt.Errorf("reading file `%s` at offset `%d`: %w", f.file.Name(), off, err)
	}
	return n, nil
}

// WriteAt implements io.WriterAt
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if f.file == nil {
		return 0, errClosed
	}
	if err := checkBounds(f.size, off, len(p)); err != nil {
		return 0, err
	}
	n, err := f.file.WriteAt(p, off)
	if err != nil {
		return n, fmt.Errorf("writing file `%s` at offset `%d`: %w", f.file.Name(), off, err)
	}
	return n, nil
}

// Size returns the usable size in bytes
func (f *File) Size() int64 {
	return f.size
}

// SectorSize the logical sector size of the host device
func (f *File) SectorSize() int64 {
	return f.sectorSize
}

// Name returns the host path of the backing file
func (f *File) Name() string {
	if f.file == nil {
		return ""
	}
	return f.file.Name()
}

// Close closes the host file. The file itself is left in place.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
