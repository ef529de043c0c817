package toyfs

import (
	"errors"
	"fmt"
)

// Check verifies the bookkeeping of the filesystem:
//   - every block is either free or owned by exactly one inode
//   - each inode's block lists agree with its block count and size
//   - each inode's link count matches the entries naming it
//
// All problems found are returned joined.
func (fs *FileSystem) Check() error {
	var errs []error
	g := fs.geometry

	owner := map[int64]inodeID{}
	var used int
	for id, in := range fs.inodes {
		blocks := in.blocks()
		if len(blocks) != in.blocksUsed {
			errs = append(errs, fmt.Errorf("inode %d: lists %d blocks, counts %d", id, len(blocks), in.blocksUsed))
		}
		if need := g.blocksFor(in.size); need > in.blocksUsed {
			errs = append(errs, fmt.Errorf("inode %d: size %d needs %d blocks, has %d", id, in.size, need, in.blocksUsed))
		}
		if len(in.direct) < in.blocksUsed && len(in.direct) != g.directBlocks {
			errs = append(errs, fmt.Errorf("inode %d: indirect blocks in use with %d direct blocks", id, len(in.direct)))
		}
		for _, pos := range blocks {
			if other, ok := owner[pos]; ok {
				errs = append(errs, fmt.Errorf("block at %d owned by inodes %d and %d", pos, other, id))
				continue
			}
			owner[pos] = id
		}
		used += in.blocksUsed
	}

	for _, r := range fs.alloc.free {
		for pos := r.Position; pos < r.end(g.blockSize); pos += g.blockSize {
			if id, ok := owner[pos]; ok {
				errs = append(errs, fmt.Errorf("block at %d is free but owned by inode %d", pos, id))
			}
		}
	}
	if free := fs.alloc.freeBlocks(); free+used != g.numBlocks {
		errs = append(errs, fmt.Errorf("%d free and %d used blocks do not add up to %d", free, used, g.numBlocks))
	}

	names := map[inodeID]int{}
	for _, de := range fs.tree.nodes {
		if de.isDir() {
			continue
		}
		if _, ok := fs.inodes[de.inode]; !ok {
			errs = append(errs, fmt.Errorf("%s: missing inode %d", fs.tree.path(de.id), de.inode))
		}
		names[de.inode]++
	}
	for id, in := range fs.inodes {
		if names[id] != in.links {
			errs = append(errs, fmt.Errorf("inode %d: link count %d, named %d times", id, in.links, names[id]))
		}
	}
	return errors.Join(errs...)
}
