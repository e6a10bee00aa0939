package pevent

import (
	"slices"

	"github.com/arloliu/pevent/errs"
)

// cursor is a ParseBuf bounded to an exact number of bytes pulled out of
// another ParseBuf. Building a cursor consumes exactly n bytes from the
// source even when the record is later only partially decoded, which is what
// keeps the outer parser aligned on record boundaries.
//
// Segments are stored in reverse pull order so consumption pops from the
// tail without shifting the slice. Non-external source chunks are copied
// while pulling; once inside the cursor every segment is stable for the
// lifetime of the decode, so the cursor always hands out external chunks.
type cursor struct {
	segs      [][]byte
	remaining int
}

var _ ParseBuf = (*cursor)(nil)

// newCursor pulls exactly n bytes from buf. The final source chunk is
// truncated as needed; buf is left positioned at the first byte after the
// cursor's range. Returns the source's error when fewer than n bytes are
// available, leaving buf partially consumed.
func newCursor(buf ParseBuf, n int) (*cursor, error) {
	c := &cursor{remaining: n}

	for n > 0 {
		ch, err := buf.Chunk()
		if err != nil {
			return nil, err
		}

		data := ch.Data
		if len(data) > n {
			data = data[:n]
		}

		if !ch.External {
			data = slices.Clone(data)
		}

		c.segs = append(c.segs, data)
		buf.Advance(len(data))
		n -= len(data)
	}

	slices.Reverse(c.segs)

	return c, nil
}

// Chunk returns the current tail segment.
func (c *cursor) Chunk() (Chunk, error) {
	if len(c.segs) == 0 {
		return Chunk{}, errs.ErrUnexpectedEOF
	}

	return Chunk{Data: c.segs[len(c.segs)-1], External: true}, nil
}

// Advance consumes n bytes. Advancing past the cursor's end is a bug in the
// caller and panics.
func (c *cursor) Advance(n int) {
	for n > 0 {
		if len(c.segs) == 0 {
			panic("pevent: cursor advanced past the end of the record")
		}

		tail := c.segs[len(c.segs)-1]
		if n < len(tail) {
			c.segs[len(c.segs)-1] = tail[n:]
			c.remaining -= n

			return
		}

		n -= len(tail)
		c.remaining -= len(tail)
		c.segs = c.segs[:len(c.segs)-1]
	}
}

// RemainingHint returns the exact number of unconsumed bytes.
func (c *cursor) RemainingHint() (int, bool) {
	return c.remaining, true
}

// asSlice returns the cursor's remaining bytes as a single contiguous slice
// when it holds at most one segment. Dispatch uses this to degrade a
// contiguous cursor back into a plain in-memory buffer, recovering the
// borrow fast paths.
func (c *cursor) asSlice() ([]byte, bool) {
	switch len(c.segs) {
	case 0:
		return nil, true
	case 1:
		return c.segs[0], true
	default:
		return nil, false
	}
}
