package toyfs

import (
	"errors"
	"time"
)

// Copy creates dest as a new file holding the content of src. If dest is an
// existing directory the copy is placed inside it under the name of src; any other
// existing dest is refused. The space needed is checked before anything is created.
func (fs *FileSystem) Copy(src, dest string) error {
	fs.log.Debugf("cp: src=%q dest=%q", src, dest)
	rs, err := fs.resolve("cp", src)
	if err != nil {
		return err
	}
	switch {
	case rs.entry == nil:
		return pathError("cp", src, ErrNotFound)
	case rs.entry.isDir():
		return pathError("cp", src, ErrNotAFile)
	}
	rd, err := fs.resolve("cp", dest)
	if err != nil {
		return err
	}

	parent, name := rd.parent, rd.name
	switch {
	case rd.entry != nil && rd.entry.isDir():
		parent, name = rd.entry, rs.entry.name
		if fs.tree.findChild(parent, name) != nil {
			return pathError("cp", dest, ErrAlreadyExists)
		}
	case rd.entry != nil:
		return pathError("cp", dest, ErrAlreadyExists)
	case !fs.fileAllowed(rd):
		return pathError("cp", dest, ErrNotADirectory)
	}

	from := fs.inodes[rs.entry.inode]
	if need, free := fs.geometry.blocksFor(from.size), fs.alloc.freeBlocks(); need > free {
		fs.log.Warnf("cp: %q needs %d blocks, %d free", src, need, free)
		return pathError("cp", dest, ErrInsufficientSpace)
	}

	de, to, err := fs.createFile(parent, name)
	if err != nil {
		return pathError("cp", dest, err)
	}
	if err := fs.copyContent(from, to); err != nil {
		return pathError("cp", dest, errors.Join(err, fs.removeFile(de)))
	}
	return nil
}

// copyContent duplicates the content of one inode into an empty one, a block at a time
func (fs *FileSystem) copyContent(from, to *inode) error {
	if _, err := to.grow(fs.geometry, fs.alloc, from.size); err != nil {
		return err
	}
	buf := make([]byte, fs.geometry.blockSize)
	for off := int64(0); off < from.size; off += int64(len(buf)) {
		b := buf[:min(int64(len(buf)), from.size-off)]
		if err := fs.readAt(from, off, b); err != nil {
			return err
		}
		// a short final block is padded so no stale bytes follow the end of file
		clear(buf[len(b):])
		if err := fs.writeAt(to, off, buf); err != nil {
			return err
		}
	}
	to.size = from.size
	now := time.Now()
	to.modifyTime = now
	to.changeTime = now
	from.accessTime = now
	return nil
}

// ReadFile returns the whole content of the file at p
func (fs *FileSystem) ReadFile(p string) ([]byte, error) {
	r, err := fs.resolve("cat", p)
	if err != nil {
		return nil, err
	}
	switch {
	case r.entry == nil:
		return nil, pathError("cat", p, ErrNotFound)
	case r.entry.isDir():
		return nil, pathError("cat", p, ErrNotAFile)
	}
	in := fs.inodes[r.entry.inode]
	b := make([]byte, in.size)
	if err := fs.readAt(in, 0, b); err != nil {
		return nil, pathError("cat", p, err)
	}
	in.accessTime = time.Now()
	return b, nil
}

// Cat returns the content of the given files concatenated. Files that cannot be
// read are skipped; their errors are joined.
func (fs *FileSystem) Cat(paths ...string) ([]byte, error) {
	var (
		out  []byte
		errs []error
	)
	for _, p := range paths {
		fs.log.Debugf("cat: path=%q", p)
		b, err := fs.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, b...)
	}
	return out, errors.Join(errs...)
}
