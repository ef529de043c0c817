package toyfs

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vdisk/vdisk/backend"
)

// Open opens the file at p and returns a new descriptor for it, with the cursor at 0.
//
// If p does not exist and mode permits writing, an empty file is created in the
// parent directory. Opening a missing path read-only fails with ErrNotFound and
// creates nothing.
func (fs *FileSystem) Open(p string, mode Mode) (int, error) {
	fs.log.Debugf("open: path=%q mode=%s", p, mode)
	if !mode.valid() {
		return -1, pathError("open", p, ErrInvalidMode)
	}
	r, err := fs.resolve("open", p)
	if err != nil {
		return -1, err
	}

	var ino inodeID
	switch {
	case r.entry == nil && !mode.canWrite():
		return -1, pathError("open", p, ErrNotFound)
	case r.entry == nil:
		if !fs.fileAllowed(r) {
			return -1, pathError("open", p, ErrNotADirectory)
		}
		_, in, err := fs.createFile(r.parent, r.name)
		if err != nil {
			return -1, pathError("open", p, err)
		}
		ino = in.id
	case r.entry.id == rootNode:
		return -1, pathError("open", p, ErrRootProtected)
	case r.entry.isDir():
		return -1, pathError("open", p, ErrNotADirectory)
	default:
		ino = r.entry.inode
	}
	d := fs.files.add(mode, ino)
	return d.fd, nil
}

// descriptor looks up an open descriptor and the inode it refers to
func (fs *FileSystem) descriptor(op string, fd int) (*descriptor, *inode, error) {
	d := fs.files.get(fd)
	if d == nil {
		return nil, nil, fdError(op, fd, ErrDescriptorNotOpen)
	}
	in, ok := fs.inodes[d.inode]
	if !ok {
		return nil, nil, fdError(op, fd, ErrStaleDescriptor)
	}
	return d, in, nil
}

// Read reads up to n bytes from the cursor of fd and advances the cursor by the
// number of bytes returned. Fewer than n bytes are returned at the end of the file;
// a cursor at or past the end returns an empty slice and no error.
func (fs *FileSystem) Read(fd, n int) ([]byte, error) {
	fs.log.Debugf("read: fd=%d n=%d", fd, n)
	d, in, err := fs.descriptor("read", fd)
	if err != nil {
		return nil, err
	}
	if !d.mode.canRead() {
		return nil, fdError("read", fd, ErrDescriptorModeMismatch)
	}
	if n < 0 {
		return nil, fdError("read", fd, fmt.Errorf("%w: negative count %d", ErrInvalidOffset, n))
	}
	if d.cursor >= in.size || n == 0 {
		return []byte{}, nil
	}
	count := min(int64(n), in.size-d.cursor)
	b := make([]byte, count)
	if err := fs.readAt(in, d.cursor, b); err != nil {
		return nil, fdError("read", fd, err)
	}
	d.cursor += count
	in.accessTime = time.Now()
	return b, nil
}

// Write writes data at the cursor of fd, growing the file as needed, and advances
// the cursor past it. The blocks for the whole write are allocated at once; if they
// cannot be, nothing is written and ErrInsufficientSpace is returned.
func (fs *FileSystem) Write(fd int, data []byte) (int, error) {
	fs.log.Debugf("write: fd=%d n=%d", fd, len(data))
	d, in, err := fs.descriptor("write", fd)
	if err != nil {
		return 0, err
	}
	if !d.mode.canWrite() {
		return 0, fdError("write", fd, ErrDescriptorModeMismatch)
	}
	if len(data) == 0 {
		return 0, nil
	}
	end := d.cursor + int64(len(data))
	if end < d.cursor {
		return 0, fdError("write", fd, fmt.Errorf("%w: %d bytes at %d", ErrInvalidOffset, len(data), d.cursor))
	}
	if capacity := int64(fs.geometry.numBlocks) * fs.geometry.blockSize; end > capacity {
		fs.log.Warnf("write: fd=%d inode=%d needs %d bytes of a %d byte disk", fd, in.id, end, capacity)
		return 0, fdError("write", fd, fmt.Errorf("%w: %w: file would end at %d, disk holds %d bytes",
			ErrInsufficientSpace, ErrOutOfSpace, end, capacity))
	}

	added, err := in.grow(fs.geometry, fs.alloc, end)
	if err != nil {
		fs.log.Warnf("write: fd=%d inode=%d needs %d bytes: %v", fd, in.id, end, err)
		return 0, fdError("write", fd, fmt.Errorf("%w: %w", ErrInsufficientSpace, err))
	}
	if err := fs.zeroBlocks(added); err != nil {
		return 0, fdError("write", fd, errors.Join(err, fs.rollback(in, len(added))))
	}
	if err := fs.writeAt(in, d.cursor, data); err != nil {
		return 0, fdError("write", fd, errors.Join(err, fs.rollback(in, len(added)), fs.clearTail(in)))
	}

	d.cursor = end
	in.size = max(in.size, end)
	now := time.Now()
	in.modifyTime = now
	in.changeTime = now
	return len(data), nil
}

// Seek moves the cursor of fd to pos. The position is not checked against the
// size of the file; writing past the end fills the gap with zeros.
func (fs *FileSystem) Seek(fd int, pos int64) error {
	fs.log.Debugf("seek: fd=%d pos=%d", fd, pos)
	d, _, err := fs.descriptor("seek", fd)
	if err != nil {
		return err
	}
	if pos < 0 {
		return fdError("seek", fd, fmt.Errorf("%w: %d", ErrInvalidOffset, pos))
	}
	d.cursor = pos
	return nil
}

// Close releases the descriptor. Writes are applied as they happen, so nothing is
// flushed. Closing a descriptor whose file has been removed succeeds.
func (fs *FileSystem) Close(fd int) error {
	fs.log.Debugf("close: fd=%d", fd)
	if !fs.files.remove(fd) {
		return fdError("close", fd, ErrDescriptorNotOpen)
	}
	return nil
}

// readAt fills b from the content of in starting at byte off, one block at a time
func (fs *FileSystem) readAt(in *inode, off int64, b []byte) error {
	bs := fs.geometry.blockSize
	for done := 0; done < len(b); {
		pos, err := in.blockPosition(fs.geometry, off)
		if err != nil {
			return err
		}
		within := off % bs
		chunk := int(min(int64(len(b)-done), bs-within))
		n, err := fs.storage.ReadAt(b[done:done+chunk], pos+within)
		if err != nil && !(errors.Is(err, io.EOF) && n == chunk) {
			return fmt.Errorf("could not read block at %d: %w", pos, err)
		}
		done += chunk
		off += int64(chunk)
	}
	return nil
}

// writeAt stores b into the content of in starting at byte off. The blocks must
// already be allocated.
func (fs *FileSystem) writeAt(in *inode, off int64, b []byte) error {
	bs := fs.geometry.blockSize
	for done := 0; done < len(b); {
		pos, err := in.blockPosition(fs.geometry, off)
		if err != nil {
			return err
		}
		within := off % bs
		chunk := int(min(int64(len(b)-done), bs-within))
		if _, err := fs.storage.WriteAt(b[done:done+chunk], pos+within); err != nil {
			return fmt.Errorf("could not write block at %d: %w", pos, err)
		}
		done += chunk
		off += int64(chunk)
	}
	return nil
}

// zeroBlocks clears freshly allocated blocks, which may still hold the content of
// a removed file
func (fs *FileSystem) zeroBlocks(positions []int64) error {
	bs := fs.geometry.blockSize
	for i := 0; i < len(positions); {
		// clear contiguous runs with a single call
		j := i + 1
		for j < len(positions) && positions[j] == positions[j-1]+bs {
			j++
		}
		if err := backend.Zero(fs.storage, positions[i], int64(j-i)*bs); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// clearTail zeroes every byte past the end of in that still sits in one of its
// blocks, so a later write past the end reads back zeros
func (fs *FileSystem) clearTail(in *inode) error {
	bs := fs.geometry.blockSize
	for off := in.size; off < int64(in.blocksUsed)*bs; {
		pos, err := in.blockPosition(fs.geometry, off)
		if err != nil {
			return err
		}
		within := off % bs
		if err := backend.Zero(fs.storage, pos+within, bs-within); err != nil {
			return fmt.Errorf("could not clear tail of inode %d: %w", in.id, err)
		}
		off += bs - within
	}
	return nil
}

// rollback gives back the last n blocks of in after a failed write
func (fs *FileSystem) rollback(in *inode, n int) error {
	if n == 0 {
		return nil
	}
	if err := fs.alloc.release(in.shrinkBlocks(n)); err != nil {
		return fmt.Errorf("could not roll back %d blocks of inode %d: %w", n, in.id, err)
	}
	return nil
}
