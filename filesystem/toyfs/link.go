package toyfs

import "time"

// Link creates dest as another name for the file src. Both names then share one
// inode. Unless AllowSameDirectoryLinks was set, dest must be in a different
// directory than src.
func (fs *FileSystem) Link(src, dest string) error {
	fs.log.Debugf("link: src=%q dest=%q", src, dest)
	rs, err := fs.resolve("link", src)
	if err != nil {
		return err
	}
	switch {
	case rs.entry == nil:
		return pathError("link", src, ErrNotFound)
	case rs.entry.isDir():
		return pathError("link", src, ErrNotAFile)
	}
	rd, err := fs.resolve("link", dest)
	if err != nil {
		return err
	}
	switch {
	case rd.entry != nil:
		return pathError("link", dest, ErrAlreadyExists)
	case !fs.fileAllowed(rd):
		return pathError("link", dest, ErrNotADirectory)
	case !fs.allowSameDirLinks && rd.parent.id == rs.parent.id:
		return pathError("link", dest, ErrSameDirectory)
	}

	in := fs.inodes[rs.entry.inode]
	if _, err := fs.tree.add(rd.parent, rd.name, kindFile, in.id); err != nil {
		return pathError("link", dest, err)
	}
	in.links++
	in.changeTime = time.Now()
	return nil
}

// Unlink removes the file entry at p. When it was the last name of its inode the
// inode is destroyed and its blocks return to the free list; descriptors still open
// on it become stale.
func (fs *FileSystem) Unlink(p string) error {
	fs.log.Debugf("unlink: path=%q", p)
	r, err := fs.resolve("unlink", p)
	if err != nil {
		return err
	}
	switch {
	case r.entry == nil:
		return pathError("unlink", p, ErrNotFound)
	case r.entry.id == rootNode:
		return pathError("unlink", p, ErrRootProtected)
	case r.entry.isDir():
		return pathError("unlink", p, ErrNotAFile)
	}
	if err := fs.removeFile(r.entry); err != nil {
		return pathError("unlink", p, err)
	}
	return nil
}

// removeFile drops a file entry and, with its last link, the inode and its blocks.
// Blocks are released before the entry goes so a failure changes nothing.
func (fs *FileSystem) removeFile(de *dirEntry) error {
	in := fs.inodes[de.inode]
	if in != nil && in.links <= 1 {
		if err := fs.alloc.release(in.blocks()); err != nil {
			return err
		}
		delete(fs.inodes, in.id)
		fs.log.Debugf("inode %d destroyed, %d blocks freed", in.id, in.blocksUsed)
	} else if in != nil {
		in.links--
		in.changeTime = time.Now()
	}
	return fs.tree.remove(de)
}
