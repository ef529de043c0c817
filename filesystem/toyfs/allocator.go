package toyfs

import (
	"fmt"
	"slices"
	"sort"
)

// FreeRange is a run of contiguous free blocks. Position is the byte offset of the
// first block in the backing store.
type FreeRange struct {
	Position int64
	Count    int
}

func (r FreeRange) end(blockSize int64) int64 {
	return r.Position + int64(r.Count)*blockSize
}

// allocator keeps the ledger of free blocks as a position-ordered list of
// non-overlapping ranges. Adjacent ranges are always merged.
type allocator struct {
	blockSize int64
	numBlocks int
	free      []FreeRange
}

func newAllocator(blockSize int64, numBlocks int) *allocator {
	a := &allocator{
		blockSize: blockSize,
		numBlocks: numBlocks,
	}
	if numBlocks > 0 {
		a.free = []FreeRange{{Position: 0, Count: numBlocks}}
	}
	return a
}

// freeBlocks how many blocks are not owned by any inode
func (a *allocator) freeBlocks() int {
	var total int
	for _, r := range a.free {
		total += r.Count
	}
	return total
}

// ranges returns a copy of the free list
func (a *allocator) ranges() []FreeRange {
	return slices.Clone(a.free)
}

// allocate hands out n blocks, returning their positions in ascending order.
// Either all n blocks are allocated or none are.
func (a *allocator) allocate(n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	// check the whole request before touching the ledger
	if available := a.freeBlocks(); available < n {
		return nil, fmt.Errorf("%w: requested %d blocks, %d free", ErrOutOfSpace, n, available)
	}

	positions := make([]int64, 0, n)
	consumed := 0
	for consumed < len(a.free) && len(positions) < n {
		r := &a.free[consumed]
		take := min(r.Count, n-len(positions))
		for i := 0; i < take; i++ {
			positions = append(positions, r.Position+int64(i)*a.blockSize)
		}
		if take < r.Count {
			// split: the tail of this range stays free
			r.Position += int64(take) * a.blockSize
			r.Count -= take
			break
		}
		consumed++
	}
	a.free = slices.Delete(a.free, 0, consumed)
	return positions, nil
}

// release returns the whole block set of a destroyed inode to the ledger in one pass.
// Nothing is released if any block in the set is already free.
func (a *allocator) release(blocks []int64) error {
	switch len(blocks) {
	case 0:
		return nil
	case 1:
		return a.insert([]FreeRange{{Position: blocks[0], Count: 1}})
	}

	sorted := slices.Clone(blocks)
	slices.Sort(sorted)

	runs := make([]FreeRange, 0, 1)
	current := FreeRange{Position: sorted[0], Count: 1}
	for _, pos := range sorted[1:] {
		if pos == current.end(a.blockSize) {
			current.Count++
			continue
		}
		runs = append(runs, current)
		current = FreeRange{Position: pos, Count: 1}
	}
	runs = append(runs, current)
	return a.insert(runs)
}

// insert adds sorted, disjoint runs to the free list, merging with neighbours
func (a *allocator) insert(runs []FreeRange) error {
	for i, r := range runs {
		if err := a.validate(r); err != nil {
			return err
		}
		if i > 0 && runs[i-1].end(a.blockSize) > r.Position {
			return fmt.Errorf("%w: block %d released twice", ErrDoubleFree, r.Position)
		}
	}
	for _, r := range runs {
		a.insertOne(r)
	}
	return nil
}

func (a *allocator) validate(r FreeRange) error {
	if r.Position < 0 || r.Position%a.blockSize != 0 || r.end(a.blockSize) > int64(a.numBlocks)*a.blockSize {
		return fmt.Errorf("block %d is not a valid block position", r.Position)
	}
	i := a.search(r.Position)
	if i < len(a.free) && a.free[i].Position < r.end(a.blockSize) {
		return fmt.Errorf("%w: block %d", ErrDoubleFree, a.free[i].Position)
	}
	if i > 0 && a.free[i-1].end(a.blockSize) > r.Position {
		return fmt.Errorf("%w: block %d", ErrDoubleFree, r.Position)
	}
	return nil
}

func (a *allocator) insertOne(r FreeRange) {
	i := a.search(r.Position)
	mergePrev := i > 0 && a.free[i-1].end(a.blockSize) == r.Position
	mergeNext := i < len(a.free) && r.end(a.blockSize) == a.free[i].Position
	switch {
	case mergePrev && mergeNext:
		a.free[i-1].Count += r.Count + a.free[i].Count
		a.free = slices.Delete(a.free, i, i+1)
	case mergePrev:
		a.free[i-1].Count += r.Count
	case mergeNext:
		a.free[i].Position = r.Position
		a.free[i].Count += r.Count
	default:
		a.free = slices.Insert(a.free, i, r)
	}
}

// search index of the first free range at or after pos
func (a *allocator) search(pos int64) int {
	return sort.Search(len(a.free), func(j int) bool {
		return a.free[j].Position >= pos
	})
}
