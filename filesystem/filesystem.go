// Package filesystem provides interfaces and constants shared by the filesystem
// implementations that can be laid over a virtual disk.
package filesystem

import "io"

// Type represents the type of filesystem
type Type int

const (
	// TypeToyFS is an in-memory inode/directory graph over a block store
	TypeToyFS Type = iota
)

func (t Type) String() string {
	switch t {
	case TypeToyFS:
		return "toyfs"
	}
	return "unknown"
}

// File is an open file on a filesystem
type File interface {
	io.ReadWriteSeeker
	io.Closer
}

// FileSystem is the namespace side of a filesystem: creating, linking and
// removing entries and moving around the tree.
type FileSystem interface {
	// Type return the type of filesystem
	Type() Type
	// Label the volume label
	Label() string
	// Mkdir creates directories. Parents must already exist.
	Mkdir(paths ...string) error
	// Rmdir removes empty directories
	Rmdir(paths ...string) error
	// Chdir changes the working directory
	Chdir(p string) error
	// Getwd returns the absolute path of the working directory
	Getwd() string
	// Link creates dest as another name for the file src
	Link(src, dest string) error
	// Unlink removes a name; the file goes away with its last name
	Unlink(p string) error
	// Copy duplicates the content of src into a new file dest
	Copy(src, dest string) error
}
