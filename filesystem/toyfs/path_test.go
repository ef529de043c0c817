package toyfs

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path   string
		tokens []string
	}{
		{"/", []string{}},
		{"a", []string{"a"}},
		{"/a/b/c", []string{"a", "b", "c"}},
		{"//a///b//", []string{"a", "b"}},
		{"./a/../b", []string{".", "a", "..", "b"}},
	}
	for _, tt := range tests {
		if diff := deep.Equal(splitPath(tt.path), tt.tokens); diff != nil {
			t.Errorf("splitPath(%q): %v", tt.path, diff)
		}
	}
}

func TestResolve(t *testing.T) {
	fs := getTestFS(t, 4096, nil)
	if err := fs.Mkdir("/a", "/a/b"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, fs, "/a/f", nil)
	if err := fs.Chdir("/a"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path   string
		parent string
		entry  string
		name   string
		err    error
	}{
		{"/", "/", "/", "/", nil},
		{".", "/a", "/a", ".", nil},
		{"b", "/a", "/a/b", "b", nil},
		{"/a/b/..", "/a/b", "/a", "..", nil},
		{"../a/f", "/a", "/a/f", "f", nil},
		{"/../..", "/", "/", "..", nil},
		{"new", "/a", "", "new", nil},
		{"b/new/", "/a/b", "", "new", nil},
		{"missing/new", "", "", "", ErrInvalidPath},
		{"f/x", "", "", "", ErrNotADirectory},
		{"", "", "", "", ErrInvalidPath},
	}
	for _, tt := range tests {
		r, err := fs.resolve("test", tt.path)
		if !errors.Is(err, tt.err) {
			t.Errorf("resolve(%q) returned %v, expected %v", tt.path, err, tt.err)
			continue
		}
		if err != nil {
			continue
		}
		var entry string
		if r.entry != nil {
			entry = fs.tree.path(r.entry.id)
		}
		if parent := fs.tree.path(r.parent.id); parent != tt.parent {
			t.Errorf("resolve(%q) parent %q, expected %q", tt.path, parent, tt.parent)
		}
		if entry != tt.entry {
			t.Errorf("resolve(%q) entry %q, expected %q", tt.path, entry, tt.entry)
		}
		if r.name != tt.name {
			t.Errorf("resolve(%q) name %q, expected %q", tt.path, r.name, tt.name)
		}
	}
}

func TestTrailingSlash(t *testing.T) {
	tests := []struct {
		strict bool
		// errors expected for: stat "/f/", open "/g/" for writing, mkdir "/d/", cd "/d/"
		stat, open, mkdir, cd error
	}{
		{false, nil, nil, nil, nil},
		{true, ErrNotADirectory, ErrNotADirectory, nil, nil},
	}
	for _, tt := range tests {
		fs := getTestFS(t, 4096, &Params{StrictTrailingSlash: tt.strict})
		writeFile(t, fs, "/f", []byte("x"))
		if _, err := fs.Stat("/f/"); !errors.Is(err, tt.stat) {
			t.Errorf("strict=%v stat returned %v, expected %v", tt.strict, err, tt.stat)
		}
		if _, err := fs.Open("/g/", ModeWrite); !errors.Is(err, tt.open) {
			t.Errorf("strict=%v open returned %v, expected %v", tt.strict, err, tt.open)
		}
		if err := fs.Mkdir("/d/"); !errors.Is(err, tt.mkdir) {
			t.Errorf("strict=%v mkdir returned %v, expected %v", tt.strict, err, tt.mkdir)
		}
		if err := fs.Chdir("/d/"); !errors.Is(err, tt.cd) {
			t.Errorf("strict=%v cd returned %v, expected %v", tt.strict, err, tt.cd)
		}
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"a", "file.txt", "with space", "~tilde", strings.Repeat("x", maxNameLength)}
	for _, name := range valid {
		if err := validateName(name); err != nil {
			t.Errorf("validateName(%q): %v", name, err)
		}
	}
	invalid := []string{"", ".", "..", "a/b", "tab\t", "nul\x00", "é", strings.Repeat("x", maxNameLength+1)}
	for _, name := range invalid {
		if err := validateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("validateName(%q) returned %v", name, err)
		}
	}
}
