package toyfs

import (
	"os"
	"time"
)

// FileInfo describes a directory entry. It satisfies io/fs.FileInfo.
type FileInfo struct {
	name       string
	kind       entryKind
	inode      inodeID
	links      int
	size       int64
	blocks     int
	modTime    time.Time
	accessTime time.Time
	changeTime time.Time
}

func (fi *FileInfo) Name() string {
	return fi.name
}

func (fi *FileInfo) Size() int64 {
	return fi.size
}

func (fi *FileInfo) Mode() os.FileMode {
	if fi.kind == kindDir {
		return os.ModeDir | 0o755
	}
	return 0o644
}

func (fi *FileInfo) ModTime() time.Time {
	return fi.modTime
}

func (fi *FileInfo) IsDir() bool {
	return fi.kind == kindDir
}

func (fi *FileInfo) Sys() any {
	return nil
}

// Kind "file" or "directory"
func (fi *FileInfo) Kind() string {
	return fi.kind.String()
}

// Inode the inode number of a file, 0 for a directory
func (fi *FileInfo) Inode() uint64 {
	return uint64(fi.inode)
}

// Links how many names the file has. Directories always report 1.
func (fi *FileInfo) Links() int {
	return fi.links
}

// Blocks how many blocks the file owns
func (fi *FileInfo) Blocks() int {
	return fi.blocks
}

func (fi *FileInfo) AccessTime() time.Time {
	return fi.accessTime
}

func (fi *FileInfo) ChangeTime() time.Time {
	return fi.changeTime
}

func (fs *FileSystem) info(de *dirEntry) *FileInfo {
	fi := &FileInfo{
		name:       de.name,
		kind:       de.kind,
		links:      1,
		modTime:    de.modTime,
		accessTime: de.modTime,
		changeTime: de.modTime,
	}
	if in, ok := fs.inodes[de.inode]; ok && !de.isDir() {
		fi.inode = in.id
		fi.links = in.links
		fi.size = in.size
		fi.blocks = in.blocksUsed
		fi.modTime = in.modifyTime
		fi.accessTime = in.accessTime
		fi.changeTime = in.changeTime
	}
	return fi
}

// Chtimes sets the access and modification times of the file at p
func (fs *FileSystem) Chtimes(p string, atime, mtime time.Time) error {
	r, err := fs.resolve("chtimes", p)
	if err != nil {
		return err
	}
	if r.entry == nil {
		return pathError("chtimes", p, ErrNotFound)
	}
	if r.entry.isDir() {
		r.entry.modTime = mtime
		return nil
	}
	in := fs.inodes[r.entry.inode]
	in.accessTime = atime
	in.modifyTime = mtime
	in.changeTime = time.Now()
	return nil
}

// Usage is a summary of how the store is used
type Usage struct {
	BlockSize       int64
	TotalBlocks     int
	FreeBlocks      int
	UsedBlocks      int
	Inodes          int
	Directories     int
	OpenDescriptors int
}
