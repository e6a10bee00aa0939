package pevent

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pevent/errs"
)

// chunkedBuf hands out the input in fixed-size temporary chunks, modelling a
// streaming backend. The chunk bytes live in a scratch buffer that Advance
// poisons, so any code holding a chunk past Advance reads garbage. Tests use
// it to prove the parser and cursor copy temporary data before keeping it.
type chunkedBuf struct {
	data    []byte
	size    int
	scratch []byte
}

var _ ParseBuf = (*chunkedBuf)(nil)

func newChunkedBuf(data []byte, size int) *chunkedBuf {
	return &chunkedBuf{data: data, size: size}
}

func (b *chunkedBuf) Chunk() (Chunk, error) {
	if len(b.data) == 0 {
		return Chunk{}, errs.ErrUnexpectedEOF
	}

	n := min(b.size, len(b.data))
	b.scratch = append(b.scratch[:0], b.data[:n]...)

	return Chunk{Data: b.scratch}, nil
}

func (b *chunkedBuf) Advance(n int) {
	b.data = b.data[n:]
	for i := range b.scratch {
		b.scratch[i] = 0xAA
	}
}

func (b *chunkedBuf) RemainingHint() (int, bool) {
	return 0, false
}

func TestBytesBuf(t *testing.T) {
	t.Run("chunk covers all remaining input", func(t *testing.T) {
		data := []byte{1, 2, 3, 4, 5}
		buf := NewBytesBuf(data)

		ch, err := buf.Chunk()
		require.NoError(t, err)
		require.Equal(t, data, ch.Data)
		require.True(t, ch.External)

		hint, ok := buf.RemainingHint()
		require.True(t, ok)
		require.Equal(t, 5, hint)
	})

	t.Run("chunk aliases the source slice", func(t *testing.T) {
		data := []byte{1, 2, 3}
		buf := NewBytesBuf(data)

		ch, err := buf.Chunk()
		require.NoError(t, err)
		require.Same(t, &data[0], &ch.Data[0])
	})

	t.Run("repeated chunk calls are stable", func(t *testing.T) {
		buf := NewBytesBuf([]byte{1, 2, 3})

		first, err := buf.Chunk()
		require.NoError(t, err)
		second, err := buf.Chunk()
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("advance consumes bytes", func(t *testing.T) {
		buf := NewBytesBuf([]byte{1, 2, 3, 4, 5})
		buf.Advance(2)

		ch, err := buf.Chunk()
		require.NoError(t, err)
		require.Equal(t, []byte{3, 4, 5}, ch.Data)

		hint, ok := buf.RemainingHint()
		require.True(t, ok)
		require.Equal(t, 3, hint)
	})

	t.Run("exhausted buffer reports EOF instead of an empty chunk", func(t *testing.T) {
		buf := NewBytesBuf([]byte{1})
		buf.Advance(1)

		_, err := buf.Chunk()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("empty input reports EOF", func(t *testing.T) {
		_, err := NewBytesBuf(nil).Chunk()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})
}

func TestReaderBuf(t *testing.T) {
	t.Run("chunks are temporary with no hint", func(t *testing.T) {
		buf := NewReaderBuf(bytes.NewReader([]byte{1, 2, 3}))

		ch, err := buf.Chunk()
		require.NoError(t, err)
		require.False(t, ch.External)
		require.Equal(t, []byte{1, 2, 3}, ch.Data)

		_, ok := buf.RemainingHint()
		require.False(t, ok)
	})

	t.Run("repeated chunk calls are stable", func(t *testing.T) {
		buf := NewReaderBuf(bytes.NewReader([]byte{1, 2, 3}))

		first, err := buf.Chunk()
		require.NoError(t, err)
		second, err := buf.Chunk()
		require.NoError(t, err)
		require.Equal(t, first.Data, second.Data)
	})

	t.Run("advance moves past consumed bytes", func(t *testing.T) {
		buf := NewReaderBuf(bytes.NewReader([]byte{1, 2, 3, 4}))

		_, err := buf.Chunk()
		require.NoError(t, err)
		buf.Advance(3)

		ch, err := buf.Chunk()
		require.NoError(t, err)
		require.Equal(t, []byte{4}, ch.Data)
	})

	t.Run("small read buffer yields partial chunks", func(t *testing.T) {
		data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		buf := NewReaderBuf(bufio.NewReaderSize(bytes.NewReader(data), 4))

		var got []byte
		for {
			ch, err := buf.Chunk()
			if errors.Is(err, errs.ErrUnexpectedEOF) {
				break
			}
			require.NoError(t, err)
			require.NotEmpty(t, ch.Data)

			got = append(got, ch.Data...)
			buf.Advance(len(ch.Data))
		}

		require.Equal(t, data, got)
	})

	t.Run("end of stream maps to EOF", func(t *testing.T) {
		buf := NewReaderBuf(bytes.NewReader(nil))

		_, err := buf.Chunk()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("backend errors are passed through wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		buf := NewReaderBuf(io.MultiReader(bytes.NewReader(nil), &failingReader{err: cause}))

		_, err := buf.Chunk()
		require.Error(t, err)
		require.ErrorIs(t, err, cause)
		require.NotErrorIs(t, err, errs.ErrUnexpectedEOF)
	})
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestChunkedBufPoisonsOnAdvance(t *testing.T) {
	// Self-check of the test helper: bytes handed out before Advance must
	// not be trusted afterwards.
	buf := newChunkedBuf([]byte{1, 2, 3, 4}, 2)

	ch, err := buf.Chunk()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, ch.Data)
	require.False(t, ch.External)

	buf.Advance(2)
	require.Equal(t, []byte{0xAA, 0xAA}, ch.Data)
}
