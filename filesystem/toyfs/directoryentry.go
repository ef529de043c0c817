package toyfs

import (
	"fmt"
	"strings"
	"time"

	"github.com/elliotwutingfeng/asciiset"
)

type nodeID uint64

// rootNode is the id of the root directory, which is its own parent
const rootNode nodeID = 1

const maxNameLength = 255

type entryKind uint8

const (
	kindFile entryKind = iota
	kindDir
)

func (k entryKind) String() string {
	if k == kindDir {
		return "directory"
	}
	return "file"
}

// validNameCharacters printable ASCII except the path separator
var validNameCharacters = func() asciiset.ASCIISet {
	var b strings.Builder
	for c := byte(' '); c <= '~'; c++ {
		if c != '/' {
			b.WriteByte(c)
		}
	}
	set, _ := asciiset.MakeASCIISet(b.String())
	return set
}()

// dirEntry is a node of the directory tree. Directories own their children;
// files reference a shared inode.
type dirEntry struct {
	id       nodeID
	kind     entryKind
	name     string
	parent   nodeID
	children []nodeID
	inode    inodeID
	// modTime creation time for files, last change of contents for directories
	modTime time.Time
}

func (de *dirEntry) isDir() bool {
	return de.kind == kindDir
}

func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case len(name) > maxNameLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, maxNameLength)
	}
	for i := 0; i < len(name); i++ {
		if !validNameCharacters.Contains(name[i]) {
			return fmt.Errorf("%w: %q contains character %#x", ErrInvalidName, name, name[i])
		}
	}
	return nil
}
