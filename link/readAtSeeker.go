package link

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// Reads up to this size are allocated up front. Larger reads grow with the
// data actually present, so a bogus size in a header fails with a short read
// instead of a huge allocation.
const maxEagerRead = 1 << 20

// readAtSeeker performs every read as a seek followed by a full read, so all
// callers share the single stream position of the underlying source.
type readAtSeeker struct {
	io.ReadSeeker
}

func (r *readAtSeeker) BytesAt(offset, size uint64) ([]byte, error) {
	if size <= maxEagerRead {
		b := make([]byte, size)
		if err := r.ReadAt(b, offset); err != nil {
			return nil, err
		}
		return b, nil
	}
	if size > math.MaxInt64 || offset > math.MaxInt64 {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", size, offset, io.ErrUnexpectedEOF)
	}
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to 0x%x: %w", offset, err)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r.ReadSeeker, int64(size)))
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", size, offset, err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", size, offset, io.ErrUnexpectedEOF)
	}
	return buf.Bytes(), nil
}

func (r *readAtSeeker) ReadAt(dst []byte, offset uint64) error {
	if offset > math.MaxInt64 {
		return fmt.Errorf("read %d bytes at 0x%x: %w", len(dst), offset, io.ErrUnexpectedEOF)
	}
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("seek to 0x%x: %w", offset, err)
	}
	if _, err := io.ReadFull(r.ReadSeeker, dst); err != nil {
		return fmt.Errorf("read %d bytes at 0x%x: %w", len(dst), offset, err)
	}
	return nil
}
