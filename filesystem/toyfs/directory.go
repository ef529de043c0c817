package toyfs

import (
	"slices"
	"strings"
	"time"
)

// tree is the arena holding every directory entry. Parent and child relations are
// ids looked up in the arena, so an entry that has been removed simply stops
// resolving.
type tree struct {
	nodes  map[nodeID]*dirEntry
	nextID nodeID
}

func newTree() *tree {
	root := &dirEntry{
		id:      rootNode,
		kind:    kindDir,
		name:    "/",
		parent:  rootNode,
		modTime: time.Now(),
	}
	return &tree{
		nodes:  map[nodeID]*dirEntry{rootNode: root},
		nextID: rootNode + 1,
	}
}

func (t *tree) get(id nodeID) *dirEntry {
	return t.nodes[id]
}

func (t *tree) root() *dirEntry {
	return t.nodes[rootNode]
}

func (t *tree) parent(de *dirEntry) *dirEntry {
	return t.nodes[de.parent]
}

// findChild looks a single name up in dir. "." and ".." are understood; there is no
// recursion. Returns nil if dir has no such entry.
func (t *tree) findChild(dir *dirEntry, name string) *dirEntry {
	switch name {
	case ".":
		return dir
	case "..":
		return t.parent(dir)
	}
	for _, id := range dir.children {
		if child := t.nodes[id]; child != nil && child.name == name {
			return child
		}
	}
	return nil
}

// children of dir in insertion order
func (t *tree) children(dir *dirEntry) []*dirEntry {
	ret := make([]*dirEntry, 0, len(dir.children))
	for _, id := range dir.children {
		if child := t.nodes[id]; child != nil {
			ret = append(ret, child)
		}
	}
	return ret
}

// add creates a new entry called name under parent. A file entry references ino,
// a directory entry ignores it.
func (t *tree) add(parent *dirEntry, name string, kind entryKind, ino inodeID) (*dirEntry, error) {
	if !parent.isDir() {
		return nil, ErrNotADirectory
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if t.findChild(parent, name) != nil {
		return nil, ErrAlreadyExists
	}
	now := time.Now()
	de := &dirEntry{
		id:      t.nextID,
		kind:    kind,
		name:    name,
		parent:  parent.id,
		modTime: now,
	}
	if kind == kindFile {
		de.inode = ino
	}
	t.nextID++
	t.nodes[de.id] = de
	parent.children = append(parent.children, de.id)
	parent.modTime = now
	return de, nil
}

// remove detaches de from its parent. Directories must be empty.
func (t *tree) remove(de *dirEntry) error {
	if de.id == rootNode {
		return ErrRootProtected
	}
	if de.isDir() && len(de.children) > 0 {
		return ErrDirectoryNotEmpty
	}
	if parent := t.parent(de); parent != nil {
		parent.children = slices.DeleteFunc(parent.children, func(id nodeID) bool {
			return id == de.id
		})
		parent.modTime = time.Now()
	}
	delete(t.nodes, de.id)
	return nil
}

// contains reports whether id is dir itself or somewhere below it
func (t *tree) contains(dir, id nodeID) bool {
	for {
		if id == dir {
			return true
		}
		de := t.nodes[id]
		if de == nil || de.id == rootNode {
			return false
		}
		id = de.parent
	}
}

// path absolute path of the entry
func (t *tree) path(id nodeID) string {
	var names []string
	for de := t.nodes[id]; de != nil && de.id != rootNode; de = t.nodes[de.parent] {
		names = append(names, de.name)
	}
	if len(names) == 0 {
		return "/"
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/")
}
