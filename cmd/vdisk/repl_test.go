package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DiskFile = filepath.Join(t.TempDir(), "disk.img")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var out, errOut bytes.Buffer
	s, err := newShell(&cfg, logger, &out, &errOut)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.shutdown() })
	return s, &out, &errOut
}

func TestShellSession(t *testing.T) {
	s, out, errOut := newTestShell(t)
	script := strings.Join([]string{
		"mkdir /a /a/b",
		"cd /a/b",
		"pwd",
		"open f w",
		"write 0 hello   world",
		"close 0",
		"",
		"open f r",
		"read 1 5",
		"read 1 100",
		"cd /",
		"tree",
		"bogus",
		"cd",
		"cd x y",
		"rmdir /a",
		"exit",
		"ls",
	}, "\n")
	require.NoError(t, s.run(strings.NewReader(script)))

	expected := strings.Join([]string{
		"sh> sh> sh> /a/b",
		"sh> 0",
		"sh> sh> closed 0",
		"sh> sh> 1",
		"sh> hello",
		"sh>  world",
		"sh> sh> /",
		"└───a",
		"    └───b",
		"        └───f",
		"sh> unknown command: bogus",
		"sh> sh> sh> sh> ",
	}, "\n")
	if diff := cmp.Diff(expected, out.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
	expectedErr := "cd: missing operand\n" +
		"cd: too many operands\n" +
		"rmdir: error: rmdir /a: directory not empty\n"
	if diff := cmp.Diff(expectedErr, errOut.String()); diff != "" {
		t.Errorf("stderr mismatch (-want +got):\n%s", diff)
	}
}

func TestShellErrorsAreReported(t *testing.T) {
	s, _, errOut := newTestShell(t)
	for _, line := range []string{
		"open /missing r",
		"open /x q",
		"read abc 1",
		"read 9 1",
		"mkdir /d /d /e/f",
		"link /nope /x",
	} {
		require.NoError(t, s.exec(strings.Fields(line)))
	}
	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	require.Len(t, lines, 7)
	for _, l := range lines {
		require.Contains(t, l, ": error: ")
	}
	require.Contains(t, lines[0], "open: error: open /missing: not found")
	require.Contains(t, lines[2], "file descriptor not recognized")
	require.Contains(t, lines[3], "read 9: file descriptor not open")
	require.Contains(t, lines[4], "mkdir: error: mkdir /d: already exists")
	require.Contains(t, lines[5], "mkdir: error: mkdir /e/f: invalid path")
}

func TestShellFileCommands(t *testing.T) {
	s, out, errOut := newTestShell(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	exported := filepath.Join(dir, "out.txt")

	require.NoError(t, os.WriteFile(plain, []byte("first\nsecond\n"), 0o600))
	for _, line := range []string{
		"import " + plain + " /notes",
		"mkdir /backup",
		"cp /notes /backup",
		"link /notes /backup/alias",
		"cat /notes /backup/notes",
		"stat /notes",
		"export /backup/alias " + exported,
		"fsck",
		"df",
	} {
		require.NoError(t, s.exec(strings.Fields(line)))
	}
	require.Empty(t, errOut.String())

	b, err := os.ReadFile(exported)
	require.NoError(t, err)
	require.Equal(t, "first\nsecond\n", string(b))

	got := out.String()
	require.Contains(t, got, "first\nsecond\nfirst\nsecond\n")
	require.Contains(t, got, "  File: notes\n  Type: file\n Inode: 1\n Links: 2\n  Size: 13\nBlocks: 1\n")
	require.Contains(t, got, "clean\n")
	require.Contains(t, got, "vdisk")
	require.Contains(t, got, "2 inodes, 2 directories")

	// mkfs starts over on a zeroed disk
	out.Reset()
	require.NoError(t, s.exec([]string{"mkfs"}))
	require.NoError(t, s.exec([]string{"ls"}))
	require.Empty(t, out.String())
	require.NoError(t, s.exec([]string{"mkfs", "now"}))
	require.Contains(t, errOut.String(), "mkfs: too many operands")
}
