package pevent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pevent/errs"
)

func TestNewCursor(t *testing.T) {
	t.Run("consumes exactly n bytes from the source", func(t *testing.T) {
		src := NewBytesBuf([]byte{1, 2, 3, 4, 5, 6, 7, 8})

		cur, err := newCursor(src, 5)
		require.NoError(t, err)

		remaining, ok := cur.RemainingHint()
		require.True(t, ok)
		require.Equal(t, 5, remaining)

		// The source sits at the first byte past the cursor's range.
		ch, err := src.Chunk()
		require.NoError(t, err)
		require.Equal(t, []byte{6, 7, 8}, ch.Data)
	})

	t.Run("zero length consumes nothing", func(t *testing.T) {
		src := NewBytesBuf([]byte{1, 2})

		cur, err := newCursor(src, 0)
		require.NoError(t, err)

		remaining, _ := cur.RemainingHint()
		require.Equal(t, 0, remaining)

		hint, _ := src.RemainingHint()
		require.Equal(t, 2, hint)
	})

	t.Run("short source reports EOF", func(t *testing.T) {
		src := NewBytesBuf([]byte{1, 2, 3})

		_, err := newCursor(src, 4)
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("single external segment exposes a contiguous slice", func(t *testing.T) {
		data := []byte{1, 2, 3, 4}
		src := NewBytesBuf(data)

		cur, err := newCursor(src, 3)
		require.NoError(t, err)

		slice, ok := cur.asSlice()
		require.True(t, ok)
		require.Equal(t, []byte{1, 2, 3}, slice)
		require.Same(t, &data[0], &slice[0])
	})

	t.Run("multiple segments do not expose a slice", func(t *testing.T) {
		cur, err := newCursor(newChunkedBuf([]byte{1, 2, 3, 4, 5, 6}, 2), 6)
		require.NoError(t, err)

		_, ok := cur.asSlice()
		require.False(t, ok)
	})

	t.Run("temporary source chunks are copied", func(t *testing.T) {
		// chunkedBuf poisons its chunk bytes on every Advance; reading the
		// full cursor despite that proves each segment was copied while
		// pulling.
		data := []byte{1, 2, 3, 4, 5, 6, 7}
		cur, err := newCursor(newChunkedBuf(data, 3), 7)
		require.NoError(t, err)

		var got []byte
		for {
			ch, err := cur.Chunk()
			if err != nil {
				require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
				break
			}

			require.True(t, ch.External)
			got = append(got, ch.Data...)
			cur.Advance(len(ch.Data))
		}

		require.Equal(t, data, got)
	})
}

func TestCursorAdvance(t *testing.T) {
	t.Run("within a segment", func(t *testing.T) {
		cur, err := newCursor(NewBytesBuf([]byte{1, 2, 3, 4}), 4)
		require.NoError(t, err)

		cur.Advance(2)

		remaining, _ := cur.RemainingHint()
		require.Equal(t, 2, remaining)

		ch, err := cur.Chunk()
		require.NoError(t, err)
		require.Equal(t, []byte{3, 4}, ch.Data)
	})

	t.Run("across segment boundaries", func(t *testing.T) {
		cur, err := newCursor(newChunkedBuf([]byte{1, 2, 3, 4, 5, 6}, 2), 6)
		require.NoError(t, err)

		cur.Advance(5)

		remaining, _ := cur.RemainingHint()
		require.Equal(t, 1, remaining)

		ch, err := cur.Chunk()
		require.NoError(t, err)
		require.Equal(t, []byte{6}, ch.Data)
	})

	t.Run("remaining always matches segment lengths", func(t *testing.T) {
		cur, err := newCursor(newChunkedBuf([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 3), 8)
		require.NoError(t, err)

		consumed := 0
		for consumed < 8 {
			cur.Advance(1)
			consumed++

			remaining, ok := cur.RemainingHint()
			require.True(t, ok)
			require.Equal(t, 8-consumed, remaining)

			total := 0
			for _, seg := range cur.segs {
				total += len(seg)
			}
			require.Equal(t, remaining, total)
		}
	})

	t.Run("past the end panics", func(t *testing.T) {
		cur, err := newCursor(NewBytesBuf([]byte{1, 2}), 2)
		require.NoError(t, err)

		require.Panics(t, func() { cur.Advance(3) })
	})
}

func TestCursorChunkNeverEmpty(t *testing.T) {
	cur, err := newCursor(NewBytesBuf([]byte{1}), 1)
	require.NoError(t, err)

	cur.Advance(1)

	_, err = cur.Chunk()
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}
