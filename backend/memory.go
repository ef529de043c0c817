package backend

// Memory is a Storage held entirely in memory. Used by tests and by callers that
// do not need the disk content to outlive the process.
type Memory struct {
	buf    []byte
	closed bool
}

// NewMemory returns a zeroed in-memory storage of size bytes
func NewMemory(size int64) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// ReadAt implements io.ReaderAt
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if m.closed {
		return 0, errClosed
	}
	if err := checkBounds(int64(len(m.buf)), off, len(p)); err != nil {
		return 0, err
	}
	return copy(p, m.buf[off:]), nil
}

// WriteAt implements io.WriterAt
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if m.closed {
		return 0, errClosed
	}
	if err := checkBounds(int64(len(m.buf)), off, len(p)); err != nil {
		return 0, err
	}
	return copy(m.buf[off:], p), nil
}

// Size returns the size of the storage in bytes
func (m *Memory) Size() int64 {
	return int64(len(m.buf))
}

// Close marks the storage closed; later access fails.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// Bytes exposes the raw content, for inspection in tests
func (m *Memory) Bytes() []byte {
	return m.buf
}
