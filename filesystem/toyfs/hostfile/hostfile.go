// Package hostfile moves file content between the host and a toyfs filesystem.
//
// Content is copied a line at a time through the descriptor API of the
// filesystem. A host file whose name ends in a known compression extension
// (.gz, .zst, .lz4, .xz, .lzma) is decompressed on import and compressed on export.
package hostfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/djherbis/times"
	"github.com/pkg/xattr"
	"github.com/vdisk/vdisk/filesystem/toyfs"
	"github.com/vdisk/vdisk/filesystem/toyfs/compress"
)

const (
	// XattrSource names the extended attribute holding the path an exported file came from
	XattrSource = "user.vdisk.source"
	// XattrVolume names the extended attribute holding the uuid of the exporting volume
	XattrVolume = "user.vdisk.volume"
)

// Import copies the host file at hostPath into a new file p. p must not exist.
// The new file takes the modification and access times of the host file.
// Returns the number of bytes written to p.
func Import(fs *toyfs.FileSystem, hostPath, p string) (int64, error) {
	if _, err := fs.Stat(p); err == nil {
		return 0, &os.PathError{Op: "import", Path: p, Err: toyfs.ErrAlreadyExists}
	} else if !errors.Is(err, toyfs.ErrNotFound) {
		return 0, err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return 0, fmt.Errorf("could not open host file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if c := compress.ForPath(hostPath); c != nil {
		rc, err := c.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("could not decompress %s: %w", hostPath, err)
		}
		defer rc.Close()
		r = rc
	}

	fd, err := fs.Open(p, toyfs.ModeWrite)
	if err != nil {
		return 0, err
	}
	written, err := copyLines(r, func(line []byte) error {
		_, err := fs.Write(fd, line)
		return err
	})
	if closeErr := fs.Close(fd); err == nil {
		err = closeErr
	}
	if err != nil {
		// leave nothing half imported behind
		return 0, errors.Join(fmt.Errorf("could not import %s: %w", hostPath, err), fs.Unlink(p))
	}

	if ts, err := times.Stat(hostPath); err == nil {
		if err := fs.Chtimes(p, ts.AccessTime(), ts.ModTime()); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Export copies the file p to the host file at hostPath, replacing it if it
// exists. The host file gets the modification time of p and, where the host
// filesystem supports it, extended attributes naming its origin.
// Returns the number of bytes written to the host, before compression.
func Export(fs *toyfs.FileSystem, p, hostPath string) (written int64, err error) {
	stats, err := fs.Stat(p)
	if err != nil {
		return 0, err
	}
	info := stats[0]
	if info.IsDir() {
		return 0, &os.PathError{Op: "export", Path: p, Err: toyfs.ErrNotAFile}
	}

	src, err := fs.OpenFile(p, toyfs.ModeRead)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	f, err := os.Create(hostPath)
	if err != nil {
		return 0, fmt.Errorf("could not create host file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("could not close host file: %w", closeErr)
		}
	}()

	var w io.WriteCloser = nopWriteCloser{f}
	if c := compress.ForPath(hostPath); c != nil {
		if w, err = c.NewWriter(f); err != nil {
			return 0, fmt.Errorf("could not compress %s: %w", hostPath, err)
		}
	}
	written, err = copyLines(bufio.NewReaderSize(src, int(fs.BlockSize())), func(line []byte) error {
		_, err := w.Write(line)
		return err
	})
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, fmt.Errorf("could not export %s: %w", p, err)
	}

	if err := os.Chtimes(hostPath, info.AccessTime(), info.ModTime()); err != nil {
		return written, fmt.Errorf("could not set times on host file: %w", err)
	}
	tag(hostPath, p, fs)
	return written, nil
}

// tag records where an exported file came from. Host filesystems without user
// xattr support are silently skipped.
func tag(hostPath, p string, fs *toyfs.FileSystem) {
	_ = xattr.Set(hostPath, XattrSource, []byte(p))
	_ = xattr.Set(hostPath, XattrVolume, []byte(fs.UUID().String()))
}

// copyLines feeds r to write one line at a time, the last line possibly without
// its newline
func copyLines(r io.Reader, write func(line []byte) error) (int64, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	var total int64
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if werr := write(line); werr != nil {
				return total, werr
			}
			total += int64(len(line))
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
