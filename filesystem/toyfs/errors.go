package toyfs

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrInvalidPath an intermediate component of a path could not be resolved
	ErrInvalidPath = errors.New("invalid path")

	// ErrAlreadyExists a create or link would collide with an existing entry
	ErrAlreadyExists = fmt.Errorf("already exists: %w", os.ErrExist)

	// ErrNotFound the target of an operation does not exist
	ErrNotFound = fmt.Errorf("not found: %w", os.ErrNotExist)

	// ErrNotAFile the operation needs a regular file
	ErrNotAFile = errors.New("not a file")

	// ErrNotADirectory a path names a file where a directory is needed
	ErrNotADirectory = errors.New("not a directory")

	// ErrRootProtected root cannot be removed, recreated or opened
	ErrRootProtected = errors.New("root directory is protected")

	// ErrDirectoryNotEmpty rmdir of a directory that still has entries
	ErrDirectoryNotEmpty = errors.New("directory not empty")

	// ErrWorkingDirectoryBusy rmdir of the working directory or one of its ancestors
	ErrWorkingDirectoryBusy = errors.New("directory is the working directory or one of its ancestors")

	// ErrSameDirectory link source and destination share a parent directory
	ErrSameDirectory = errors.New("src and dest must be in different directories")

	// ErrInvalidName an entry name is reserved, too long or not printable ASCII
	ErrInvalidName = errors.New("invalid entry name")

	// ErrDescriptorNotOpen no open descriptor has the given id
	ErrDescriptorNotOpen = errors.New("file descriptor not open")

	// ErrDescriptorModeMismatch read on a write-only descriptor or write on a read-only one
	ErrDescriptorModeMismatch = errors.New("file descriptor mode does not permit operation")

	// ErrStaleDescriptor the descriptor outlived every link to its file
	ErrStaleDescriptor = errors.New("file descriptor refers to a removed file")

	// ErrInvalidOffset a negative position or count, or a write ending past the largest offset
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidMode an open mode other than read, write or both
	ErrInvalidMode = errors.New("invalid open mode")

	// ErrOutOfSpace the allocator cannot satisfy a request
	ErrOutOfSpace = errors.New("out of space")

	// ErrInsufficientSpace a write needs more blocks than are free
	ErrInsufficientSpace = errors.New("insufficient space")

	// ErrDoubleFree a released block is already in the free list
	ErrDoubleFree = errors.New("block already free")
)

// DescriptorError records a failed operation against a file descriptor.
type DescriptorError struct {
	Op  string
	FD  int
	Err error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Op, e.FD, e.Err)
}

func (e *DescriptorError) Unwrap() error {
	return e.Err
}

func fdError(op string, fd int, err error) error {
	return &DescriptorError{Op: op, FD: fd, Err: err}
}

func pathError(op, p string, err error) error {
	return &os.PathError{Op: op, Path: p, Err: err}
}
