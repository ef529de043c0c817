package main

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/vdisk/vdisk/filesystem/toyfs"
)

const (
	treeBranch = "├───"
	treeLast   = "└───"
	treePipe   = "│   "
	treeSpace  = "    "
)

// renderTree draws dir and everything below it, children in creation order
func renderTree(w io.Writer, fs *toyfs.FileSystem, dir string) error {
	name := path.Base(dir)
	return renderTreeLevel(w, fs, dir, name, "")
}

func renderTreeLevel(w io.Writer, fs *toyfs.FileSystem, dir, name, indent string) error {
	fmt.Fprintln(w, name)
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for i, e := range entries {
		connector, next := treeBranch, treePipe
		if i == len(entries)-1 {
			connector, next = treeLast, treeSpace
		}
		fmt.Fprint(w, indent+connector)
		if !e.IsDir() {
			fmt.Fprintln(w, e.Name())
			continue
		}
		if err := renderTreeLevel(w, fs, path.Join(dir, e.Name()), e.Name(), indent+next); err != nil {
			return err
		}
	}
	return nil
}

func renderStat(w io.Writer, info *toyfs.FileInfo) {
	fmt.Fprintf(w, "  File: %s\n", info.Name())
	fmt.Fprintf(w, "  Type: %s\n", info.Kind())
	if !info.IsDir() {
		fmt.Fprintf(w, " Inode: %d\n", info.Inode())
		fmt.Fprintf(w, " Links: %d\n", info.Links())
		fmt.Fprintf(w, "  Size: %d\n", info.Size())
		fmt.Fprintf(w, "Blocks: %d\n", info.Blocks())
	}
	fmt.Fprintf(w, "Modify: %s\n", info.ModTime().Format(time.RFC3339))
}

func renderUsage(w io.Writer, label string, u toyfs.Usage) {
	fmt.Fprintf(w, "%-12s %10s %10s %10s %5s\n", "Volume", "Blocks", "Used", "Free", "Use%")
	var pct int
	if u.TotalBlocks > 0 {
		pct = u.UsedBlocks * 100 / u.TotalBlocks
	}
	fmt.Fprintf(w, "%-12s %10d %10d %10d %4d%%\n", label, u.TotalBlocks, u.UsedBlocks, u.FreeBlocks, pct)
	fmt.Fprintf(w, "block size %d, %d inodes, %d directories, %d open descriptors\n",
		u.BlockSize, u.Inodes, u.Directories, u.OpenDescriptors)
}
