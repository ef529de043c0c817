package vdisk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vdisk/vdisk/filesystem/toyfs"
)

func TestCreate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "disk.img")
	fs, err := Create(p, 0, nil)
	require.NoError(t, err)

	info, err := os.Stat(p)
	require.NoError(t, err)
	require.Equal(t, DefaultSize, info.Size())
	require.Equal(t, 100, fs.Usage().TotalBlocks)

	fd, err := fs.Open("/hello", toyfs.ModeWrite)
	require.NoError(t, err)
	_, err = fs.Write(fd, []byte("hello, disk"))
	require.NoError(t, err)
	require.NoError(t, fs.Close(fd))
	require.NoError(t, fs.Unmount())

	// content lands in the first block of the host file
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "hello, disk", string(b[:11]))

	// recreating zeroes the disk and starts empty
	fs, err = Create(p, 4096, &toyfs.Params{BlockSize: 512})
	require.NoError(t, err)
	defer fs.Unmount()
	require.Empty(t, fs.Ls())
	b, err = os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 4096), b)
}

func TestCreateInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := Create("", 0, nil)
	require.Error(t, err)
	_, err = Create(filepath.Join(dir, "small"), 100, nil)
	require.Error(t, err)
	_, err = Create(filepath.Join(dir, "neg"), -1, nil)
	require.Error(t, err)
}
