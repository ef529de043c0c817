// Package toyfs implements a small inode filesystem over a block store.
//
// The store is an array of fixed-size blocks addressed by byte offset. File content
// lives in blocks; everything else, the directory tree, the inode table, the free
// list and the open descriptors, is held in memory by the FileSystem and is not
// written to the store. Creating a FileSystem over a store therefore always yields
// an empty filesystem.
//
// Files are addressed through a direct block list and, once that is full, through
// indirect lists of the same capacity. Hard links share one inode; the inode and its
// blocks are reclaimed when its last name is unlinked.
//
// A FileSystem is not safe for concurrent use.
package toyfs

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vdisk/vdisk/backend"
	"github.com/vdisk/vdisk/filesystem"
)

const (
	// DefaultBlockSize block size used when Params does not set one
	DefaultBlockSize int64 = 1024
	// DefaultDirectBlocks how many block positions an inode holds inline, and how
	// many each indirect list holds
	DefaultDirectBlocks int = 100
	DefaultVolumeName       = "vdisk"
)

// Params tune a filesystem on creation. The zero value is usable.
type Params struct {
	BlockSize    int64
	DirectBlocks int
	UUID         *uuid.UUID
	VolumeName   string
	// Logger receives debug output for every operation. Defaults to a discarding logger.
	Logger *logrus.Logger
	// StrictTrailingSlash makes a path ending in "/" name only directories. When
	// false trailing slashes are ignored.
	StrictTrailingSlash bool
	// AllowSameDirectoryLinks lifts the rule that a hard link must live in a
	// different directory than its source
	AllowSameDirectoryLinks bool
}

// FileSystem implements the filesystem.FileSystem interface
type FileSystem struct {
	storage  backend.Storage
	geometry geometry
	alloc    *allocator
	tree     *tree
	inodes   map[inodeID]*inode
	// lastInode is the highest inode id handed out
	lastInode inodeID
	files     *descriptorTable
	pwd       nodeID

	uuid                uuid.UUID
	label               string
	strictTrailingSlash bool
	allowSameDirLinks   bool
	log                 *logrus.Entry
}

var _ filesystem.FileSystem = (*FileSystem)(nil)

// Create creates an empty filesystem over storage, which is expected to be zeroed.
//
// The store is split into storage.Size() / BlockSize blocks; any trailing partial
// block is not used.
func Create(storage backend.Storage, p *Params) (*FileSystem, error) {
	if storage == nil {
		return nil, errors.New("no storage provided")
	}
	if p == nil {
		p = &Params{}
	}
	blockSize := p.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize < 0 {
		return nil, fmt.Errorf("invalid block size %d", blockSize)
	}
	directBlocks := p.DirectBlocks
	if directBlocks == 0 {
		directBlocks = DefaultDirectBlocks
	}
	if directBlocks < 0 {
		return nil, fmt.Errorf("invalid direct block count %d", directBlocks)
	}
	numBlocks := storage.Size() / blockSize
	if numBlocks < 1 {
		return nil, fmt.Errorf("storage of %d bytes cannot hold a single block of %d bytes", storage.Size(), blockSize)
	}

	fsuuid := p.UUID
	if fsuuid == nil {
		fsuuid2, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("could not generate volume uuid: %w", err)
		}
		fsuuid = &fsuuid2
	}
	label := p.VolumeName
	if label == "" {
		label = DefaultVolumeName
	}
	logger := p.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	g := geometry{
		blockSize:    blockSize,
		directBlocks: directBlocks,
		numBlocks:    int(numBlocks),
	}
	fs := &FileSystem{
		storage:             storage,
		geometry:            g,
		alloc:               newAllocator(g.blockSize, g.numBlocks),
		tree:                newTree(),
		inodes:              map[inodeID]*inode{},
		files:               newDescriptorTable(),
		pwd:                 rootNode,
		uuid:                *fsuuid,
		label:               label,
		strictTrailingSlash: p.StrictTrailingSlash,
		allowSameDirLinks:   p.AllowSameDirectoryLinks,
		log:                 logger.WithField("volume", fsuuid.String()),
	}
	fs.log.Debugf("create: blocks=%d blockSize=%d directBlocks=%d", g.numBlocks, g.blockSize, g.directBlocks)
	return fs, nil
}

// Type returns the type code for the filesystem. Always returns filesystem.TypeToyFS
func (fs *FileSystem) Type() filesystem.Type {
	return filesystem.TypeToyFS
}

// Label read the volume label
func (fs *FileSystem) Label() string {
	return fs.label
}

// UUID the volume identifier
func (fs *FileSystem) UUID() uuid.UUID {
	return fs.uuid
}

// BlockSize the size of a block in bytes
func (fs *FileSystem) BlockSize() int64 {
	return fs.geometry.blockSize
}

// Storage the store the filesystem lives on
func (fs *FileSystem) Storage() backend.Storage {
	return fs.storage
}

// Mkdir creates each of the given directories. Parents must already exist.
// Every path is attempted; the errors of the ones that failed are joined.
func (fs *FileSystem) Mkdir(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := fs.mkdir(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (fs *FileSystem) mkdir(p string) error {
	fs.log.Debugf("mkdir: path=%q", p)
	r, err := fs.resolve("mkdir", p)
	if err != nil {
		return err
	}
	switch {
	case r.entry != nil && r.entry.id == rootNode:
		return pathError("mkdir", p, ErrRootProtected)
	case r.entry != nil:
		return pathError("mkdir", p, ErrAlreadyExists)
	}
	if _, err := fs.tree.add(r.parent, r.name, kindDir, 0); err != nil {
		return pathError("mkdir", p, err)
	}
	return nil
}

// Rmdir removes each of the given directories. A directory must be empty and may not
// be the working directory or one of its ancestors. Every path is attempted; the
// errors of the ones that failed are joined.
func (fs *FileSystem) Rmdir(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := fs.rmdir(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (fs *FileSystem) rmdir(p string) error {
	fs.log.Debugf("rmdir: path=%q", p)
	r, err := fs.resolve("rmdir", p)
	if err != nil {
		return err
	}
	switch {
	case r.entry == nil:
		return pathError("rmdir", p, ErrNotFound)
	case r.entry.id == rootNode:
		return pathError("rmdir", p, ErrRootProtected)
	case !r.entry.isDir():
		return pathError("rmdir", p, ErrNotADirectory)
	case fs.tree.contains(r.entry.id, fs.pwd):
		return pathError("rmdir", p, ErrWorkingDirectoryBusy)
	}
	if err := fs.tree.remove(r.entry); err != nil {
		return pathError("rmdir", p, err)
	}
	return nil
}

// Chdir changes the working directory
func (fs *FileSystem) Chdir(p string) error {
	fs.log.Debugf("cd: path=%q", p)
	r, err := fs.resolve("cd", p)
	if err != nil {
		return err
	}
	switch {
	case r.entry == nil:
		return pathError("cd", p, ErrNotFound)
	case !r.entry.isDir():
		return pathError("cd", p, ErrNotADirectory)
	}
	fs.pwd = r.entry.id
	return nil
}

// Getwd returns the absolute path of the working directory
func (fs *FileSystem) Getwd() string {
	return fs.tree.path(fs.pwd)
}

// Ls lists the names in the working directory, in creation order
func (fs *FileSystem) Ls() []string {
	children := fs.tree.children(fs.tree.get(fs.pwd))
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.name)
	}
	return names
}

// ReadDir return the contents of a given directory, in creation order.
func (fs *FileSystem) ReadDir(p string) ([]*FileInfo, error) {
	r, err := fs.resolve("readdir", p)
	if err != nil {
		return nil, err
	}
	switch {
	case r.entry == nil:
		return nil, pathError("readdir", p, ErrNotFound)
	case !r.entry.isDir():
		return nil, pathError("readdir", p, ErrNotADirectory)
	}
	children := fs.tree.children(r.entry)
	ret := make([]*FileInfo, 0, len(children))
	for _, c := range children {
		ret = append(ret, fs.info(c))
	}
	return ret, nil
}

// Stat describes each of the given paths. Infos are returned for the paths that
// exist, in order; the errors of the ones that do not are joined.
func (fs *FileSystem) Stat(paths ...string) ([]*FileInfo, error) {
	var (
		infos []*FileInfo
		errs  []error
	)
	for _, p := range paths {
		r, err := fs.resolve("stat", p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r.entry == nil {
			errs = append(errs, pathError("stat", p, ErrNotFound))
			continue
		}
		infos = append(infos, fs.info(r.entry))
	}
	return infos, errors.Join(errs...)
}

// WalkFunc is called for every entry visited by Walk. Returning filepath.SkipDir
// from a directory skips its contents.
type WalkFunc func(p string, info *FileInfo) error

// Walk visits root and everything below it depth first, in creation order.
func (fs *FileSystem) Walk(root string, fn WalkFunc) error {
	r, err := fs.resolve("walk", root)
	if err != nil {
		return err
	}
	if r.entry == nil {
		return pathError("walk", root, ErrNotFound)
	}
	err = fs.walk(r.entry, fn)
	if errors.Is(err, filepath.SkipDir) {
		return nil
	}
	return err
}

func (fs *FileSystem) walk(de *dirEntry, fn WalkFunc) error {
	if err := fn(fs.tree.path(de.id), fs.info(de)); err != nil {
		return err
	}
	if !de.isDir() {
		return nil
	}
	for _, c := range fs.tree.children(de) {
		if err := fs.walk(c, fn); err != nil {
			if errors.Is(err, filepath.SkipDir) && c.isDir() {
				continue
			}
			return err
		}
	}
	return nil
}

// Usage reports how the store is used
func (fs *FileSystem) Usage() Usage {
	u := Usage{
		BlockSize:       fs.geometry.blockSize,
		TotalBlocks:     fs.geometry.numBlocks,
		FreeBlocks:      fs.alloc.freeBlocks(),
		Inodes:          len(fs.inodes),
		OpenDescriptors: fs.files.len(),
	}
	for _, de := range fs.tree.nodes {
		if de.isDir() {
			u.Directories++
		}
	}
	u.UsedBlocks = u.TotalBlocks - u.FreeBlocks
	return u
}

// FreeRanges a snapshot of the free list, ordered by position
func (fs *FileSystem) FreeRanges() []FreeRange {
	return fs.alloc.ranges()
}

// Unmount closes the underlying storage. Open descriptors are dropped and the
// FileSystem must not be used afterwards.
func (fs *FileSystem) Unmount() error {
	fs.log.Debugf("unmount: descriptors=%d", fs.files.len())
	fs.files = newDescriptorTable()
	return fs.storage.Close()
}

// createFile adds an empty file called name to parent, with a fresh inode
func (fs *FileSystem) createFile(parent *dirEntry, name string) (*dirEntry, *inode, error) {
	id := fs.lastInode + 1
	de, err := fs.tree.add(parent, name, kindFile, id)
	if err != nil {
		return nil, nil, err
	}
	fs.lastInode = id
	in := newInode(id, fs.geometry, time.Now())
	in.links = 1
	fs.inodes[id] = in
	return de, in, nil
}
