package toyfs

import "strings"

// resolved is the outcome of walking a path
type resolved struct {
	// parent is the directory the final component was looked up in
	parent *dirEntry
	// entry is the final component, nil if it does not exist
	entry *dirEntry
	// name of the final component
	name string
	// trailingSlash the path ended with a separator
	trailingSlash bool
}

// splitPath breaks p into its non-empty components
func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// resolve walks p from the root if it is absolute, otherwise from the working
// directory.
//
// A missing final component is not an error: entry is nil and parent and name tell
// a create-style operation where to put it. A missing intermediate component fails
// with ErrInvalidPath, walking through a file fails with ErrNotADirectory.
func (fs *FileSystem) resolve(op, p string) (*resolved, error) {
	if p == "" {
		return nil, pathError(op, p, ErrInvalidPath)
	}
	start := fs.tree.get(fs.pwd)
	if strings.HasPrefix(p, "/") {
		start = fs.tree.root()
	}
	tokens := splitPath(p)

	r := &resolved{
		parent:        fs.tree.parent(start),
		entry:         start,
		name:          start.name,
		trailingSlash: len(tokens) > 0 && strings.HasSuffix(p, "/"),
	}
	for _, token := range tokens {
		current := r.entry
		if current == nil {
			return nil, pathError(op, p, ErrInvalidPath)
		}
		if !current.isDir() {
			return nil, pathError(op, p, ErrNotADirectory)
		}
		r.parent = current
		r.entry = fs.tree.findChild(current, token)
		r.name = token
	}

	if fs.strictTrailingSlash && r.trailingSlash && r.entry != nil && !r.entry.isDir() {
		return nil, pathError(op, p, ErrNotADirectory)
	}
	return r, nil
}

// fileAllowed when trailing slashes are strict, a path ending in a separator may
// only name a directory
func (fs *FileSystem) fileAllowed(r *resolved) bool {
	return !(fs.strictTrailingSlash && r.trailingSlash)
}
