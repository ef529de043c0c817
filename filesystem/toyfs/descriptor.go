package toyfs

import (
	"fmt"
	"strings"
)

// Mode is the access mode of a file descriptor
type Mode uint8

const (
	ModeRead Mode = 1 << iota
	ModeWrite

	ModeReadWrite = ModeRead | ModeWrite
)

// ParseMode accepts r, w, rw or the numeric forms 1, 2, 3
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "r", "1":
		return ModeRead, nil
	case "w", "2":
		return ModeWrite, nil
	case "rw", "wr", "3":
		return ModeReadWrite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	case ModeReadWrite:
		return "rw"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) valid() bool {
	return m == ModeRead || m == ModeWrite || m == ModeReadWrite
}

func (m Mode) canRead() bool {
	return m&ModeRead != 0
}

func (m Mode) canWrite() bool {
	return m&ModeWrite != 0
}

// descriptor is one open session on an inode. The inode is referenced by id only,
// so a descriptor never keeps a file alive.
type descriptor struct {
	fd     int
	mode   Mode
	cursor int64
	inode  inodeID
}

type descriptorTable struct {
	open map[int]*descriptor
	next int
}

func newDescriptorTable() *descriptorTable {
	return &descriptorTable{open: map[int]*descriptor{}}
}

func (t *descriptorTable) add(mode Mode, ino inodeID) *descriptor {
	d := &descriptor{
		fd:    t.next,
		mode:  mode,
		inode: ino,
	}
	t.next++
	t.open[d.fd] = d
	return d
}

func (t *descriptorTable) get(fd int) *descriptor {
	return t.open[fd]
}

func (t *descriptorTable) remove(fd int) bool {
	if _, ok := t.open[fd]; !ok {
		return false
	}
	delete(t.open, fd)
	return true
}

func (t *descriptorTable) len() int {
	return len(t.open)
}
