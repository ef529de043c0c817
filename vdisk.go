// Package vdisk creates virtual disks: a single host file, split into fixed-size
// blocks, holding a toyfs filesystem.
//
// The directory tree and inodes live in memory only. Creating a disk always
// zeroes the backing file and starts with an empty filesystem.
//
//	fs, err := vdisk.Create("disk.img", 0, &toyfs.Params{BlockSize: 1024})
//	if err != nil {
//		return err
//	}
//	defer fs.Unmount()
//	fd, err := fs.Open("/hello", toyfs.ModeWrite)
package vdisk

import (
	"errors"
	"fmt"

	"github.com/vdisk/vdisk/backend"
	"github.com/vdisk/vdisk/filesystem/toyfs"
)

// DefaultSize size of a disk created without an explicit size
const DefaultSize int64 = 102400

// Create zeroes the host file or block device at path to size bytes and lays a new
// filesystem over it. A size of 0 uses DefaultSize.
func Create(path string, size int64, p *toyfs.Params) (*toyfs.FileSystem, error) {
	if path == "" {
		return nil, errors.New("must pass device or file name")
	}
	if size == 0 {
		size = DefaultSize
	}
	if p == nil {
		p = &toyfs.Params{}
	}
	blockSize := p.BlockSize
	if blockSize == 0 {
		blockSize = toyfs.DefaultBlockSize
	}
	if size < blockSize {
		return nil, fmt.Errorf("disk size %d is smaller than one block of %d bytes", size, blockSize)
	}

	storage, err := backend.CreateFile(path, size)
	if err != nil {
		return nil, err
	}
	if sector := storage.SectorSize(); blockSize%sector != 0 {
		_ = storage.Close()
		return nil, fmt.Errorf("block size %d is not a multiple of the %d byte sectors of %s", blockSize, sector, path)
	}
	fs, err := toyfs.Create(storage, p)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("could not create filesystem on %s: %w", path, err)
	}
	return fs, nil
}
