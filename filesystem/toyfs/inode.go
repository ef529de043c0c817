package toyfs

import (
	"fmt"
	"time"
)

type inodeID uint64

// geometry the fixed shape of a filesystem
type geometry struct {
	blockSize    int64
	directBlocks int
	numBlocks    int
}

// blocksFor how many blocks are needed to hold size bytes
func (g geometry) blocksFor(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + g.blockSize - 1) / g.blockSize)
}

// inode holds the metadata of a single file. Blocks are listed in file order:
// the first directBlocks positions inline, the rest in indirect lists of
// directBlocks positions each.
type inode struct {
	id         inodeID
	size       int64
	blocksUsed int
	direct     []int64
	indirect   [][]int64
	// links how many directory entries reference this inode
	links int

	changeTime time.Time
	modifyTime time.Time
	accessTime time.Time
}

func newInode(id inodeID, g geometry, now time.Time) *inode {
	return &inode{
		id:         id,
		direct:     make([]int64, 0, g.directBlocks),
		changeTime: now,
		modifyTime: now,
		accessTime: now,
	}
}

// blockPosition returns the store offset of the block holding byte off of the file.
// Used by both the read and the write path.
func (in *inode) blockPosition(g geometry, off int64) (int64, error) {
	k := int(off / g.blockSize)
	if off < 0 || k >= in.blocksUsed {
		return 0, fmt.Errorf("offset %d is outside the %d blocks of inode %d", off, in.blocksUsed, in.id)
	}
	if k < g.directBlocks {
		return in.direct[k], nil
	}
	k -= g.directBlocks
	return in.indirect[k/g.directBlocks][k%g.directBlocks], nil
}

// grow makes sure the inode owns enough blocks for newSize bytes, asking the
// allocator for all missing blocks at once. It returns the newly added positions.
// On failure the inode is unchanged.
func (in *inode) grow(g geometry, a *allocator, newSize int64) ([]int64, error) {
	need := g.blocksFor(newSize) - in.blocksUsed
	if need <= 0 {
		return nil, nil
	}
	positions, err := a.allocate(need)
	if err != nil {
		return nil, err
	}
	in.appendBlocks(g, positions)
	return positions, nil
}

func (in *inode) appendBlocks(g geometry, positions []int64) {
	for _, pos := range positions {
		if len(in.direct) < g.directBlocks {
			in.direct = append(in.direct, pos)
		} else {
			if n := len(in.indirect); n == 0 || len(in.indirect[n-1]) == g.directBlocks {
				in.indirect = append(in.indirect, make([]int64, 0, g.directBlocks))
			}
			last := len(in.indirect) - 1
			in.indirect[last] = append(in.indirect[last], pos)
		}
		in.blocksUsed++
	}
}

// shrinkBlocks drops the last n blocks and returns their positions.
// The caller hands them back to the allocator.
func (in *inode) shrinkBlocks(n int) []int64 {
	removed := make([]int64, 0, n)
	for ; n > 0 && in.blocksUsed > 0; n-- {
		if last := len(in.indirect) - 1; last >= 0 {
			list := in.indirect[last]
			removed = append(removed, list[len(list)-1])
			if len(list) == 1 {
				in.indirect = in.indirect[:last]
			} else {
				in.indirect[last] = list[:len(list)-1]
			}
		} else {
			removed = append(removed, in.direct[len(in.direct)-1])
			in.direct = in.direct[:len(in.direct)-1]
		}
		in.blocksUsed--
	}
	return removed
}

// blocks every block position owned by the inode, direct first
func (in *inode) blocks() []int64 {
	all := make([]int64, 0, in.blocksUsed)
	all = append(all, in.direct...)
	for _, list := range in.indirect {
		all = append(all, list...)
	}
	return all
}
