package toyfs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		mode Mode
		err  error
	}{
		{"r", ModeRead, nil},
		{"1", ModeRead, nil},
		{"W", ModeWrite, nil},
		{"2", ModeWrite, nil},
		{"rw", ModeReadWrite, nil},
		{"3", ModeReadWrite, nil},
		{"x", 0, ErrInvalidMode},
		{"", 0, ErrInvalidMode},
	}
	for _, tt := range tests {
		mode, err := ParseMode(tt.in)
		if !errors.Is(err, tt.err) || mode != tt.mode {
			t.Errorf("ParseMode(%q) = %v, %v; expected %v, %v", tt.in, mode, err, tt.mode, tt.err)
		}
	}
	if s := ModeReadWrite.String(); s != "rw" {
		t.Errorf("String() = %q", s)
	}
}

func TestFileHandle(t *testing.T) {
	fs := getTestFS(t, 8192, &Params{BlockSize: 32})
	f, err := fs.OpenFile("/notes", ModeReadWrite)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "/notes" || f.Fd() != 0 {
		t.Errorf("handle %q fd %d", f.Name(), f.Fd())
	}
	text := strings.Repeat("the quick brown fox\n", 20)
	if _, err := io.Copy(f, strings.NewReader(text)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		offset int64
		whence int
		pos    int64
	}{
		{0, io.SeekStart, 0},
		{10, io.SeekCurrent, 10},
		{-4, io.SeekEnd, int64(len(text)) - 4},
		{-6, io.SeekCurrent, int64(len(text)) - 10},
	}
	for _, tt := range tests {
		pos, err := f.Seek(tt.offset, tt.whence)
		if err != nil || pos != tt.pos {
			t.Errorf("Seek(%d, %d) = %d, %v; expected %d", tt.offset, tt.whence, pos, err, tt.pos)
		}
	}
	if _, err := f.Seek(-1, io.SeekStart); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("negative seek returned %v", err)
	}
	if _, err := f.Seek(0, 42); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("bad whence returned %v", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != text {
		t.Errorf("read back %d bytes, expected %d", len(b), len(text))
	}
	if n, err := f.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Errorf("read at end returned %d, %v", n, err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); !errors.Is(err, ErrDescriptorNotOpen) {
		t.Errorf("second close returned %v", err)
	}
}
