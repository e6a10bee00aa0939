package pevent

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/pevent/errs"
)

// Chunk is a window of unconsumed input returned by a ParseBuf.
//
// When External is true the bytes alias memory that outlives the decode call,
// so decoded records may retain sub-slices of Data without copying. When it
// is false the bytes are only valid until the next Advance and must be copied
// before being kept.
type Chunk struct {
	Data     []byte
	External bool
}

// ParseBuf is the byte source a Parser decodes from.
//
// Implementations expose the input as a sequence of chunks. A successful
// Chunk call never returns an empty chunk; exhaustion is reported as
// errs.ErrUnexpectedEOF instead. Repeated Chunk calls without an intervening
// Advance return the same bytes.
type ParseBuf interface {
	// Chunk returns the next window of unconsumed bytes. The window need not
	// cover all remaining input, but it is never empty on success.
	Chunk() (Chunk, error)

	// Advance consumes n bytes. n must not exceed the length of the chunk
	// most recently returned by Chunk.
	Advance(n int)

	// RemainingHint returns the exact number of unconsumed bytes when that
	// is cheaply known. Implementations that return ok must return the true
	// remaining count, not an estimate; the parser sizes allocations from it.
	RemainingHint() (int, bool)
}

// BytesBuf is an in-memory ParseBuf over a single byte slice.
//
// Its chunks are External and cover all remaining input, which enables the
// zero-copy paths in the Parser: decoded records may alias the original
// slice directly.
type BytesBuf struct {
	data []byte
}

var _ ParseBuf = (*BytesBuf)(nil)

// NewBytesBuf creates a ParseBuf reading from data. The buffer does not copy
// data; the caller must not mutate it while decoding.
func NewBytesBuf(data []byte) *BytesBuf {
	return &BytesBuf{data: data}
}

// Chunk returns all remaining bytes as a single external chunk.
func (b *BytesBuf) Chunk() (Chunk, error) {
	if len(b.data) == 0 {
		return Chunk{}, errs.ErrUnexpectedEOF
	}

	return Chunk{Data: b.data, External: true}, nil
}

// Advance consumes n bytes.
func (b *BytesBuf) Advance(n int) {
	b.data = b.data[n:]
}

// RemainingHint returns the exact number of unconsumed bytes.
func (b *BytesBuf) RemainingHint() (int, bool) {
	return len(b.data), true
}

// ReaderBuf is a streaming ParseBuf over an io.Reader.
//
// Its chunks alias the internal read buffer, which is reused as the stream
// advances, so they are not External and the Parser copies any bytes that
// outlive a decode step. The total stream length is unknown, so
// RemainingHint reports no hint.
type ReaderBuf struct {
	r *bufio.Reader
}

var _ ParseBuf = (*ReaderBuf)(nil)

// NewReaderBuf creates a ParseBuf reading from r. If r is not already a
// *bufio.Reader it is wrapped in one.
func NewReaderBuf(r io.Reader) *ReaderBuf {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &ReaderBuf{r: br}
}

// Chunk returns the currently buffered bytes, reading from the underlying
// reader when the buffer is empty.
func (b *ReaderBuf) Chunk() (Chunk, error) {
	if b.r.Buffered() == 0 {
		if _, err := b.r.Peek(1); err != nil {
			return Chunk{}, mapReadError(err)
		}
	}

	data, err := b.r.Peek(b.r.Buffered())
	if err != nil {
		return Chunk{}, mapReadError(err)
	}

	return Chunk{Data: data}, nil
}

// Advance consumes n bytes. n never exceeds the buffered length handed out
// by Chunk, so the discard cannot fail.
func (b *ReaderBuf) Advance(n int) {
	_, _ = b.r.Discard(n)
}

// RemainingHint reports no hint; the stream length is unknown.
func (b *ReaderBuf) RemainingHint() (int, bool) {
	return 0, false
}

// mapReadError normalizes backend read failures: end-of-stream conditions
// become errs.ErrUnexpectedEOF, everything else is passed through wrapped.
func mapReadError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.ErrUnexpectedEOF
	}

	return fmt.Errorf("input read failed: %w", err)
}
