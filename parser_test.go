package pevent

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pevent/endian"
	"github.com/arloliu/pevent/errs"
)

func littleConfig() Config {
	return NewConfig().WithEndian(endian.Little())
}

func TestParserPrimitives(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	t.Run("little endian", func(t *testing.T) {
		p := NewBytesParser(data, littleConfig())

		v8, err := p.Uint8()
		require.NoError(t, err)
		require.Equal(t, uint8(0x01), v8)

		v16, err := p.Uint16()
		require.NoError(t, err)
		require.Equal(t, uint16(0x0302), v16)

		v32, err := p.Uint32()
		require.NoError(t, err)
		require.Equal(t, uint32(0x07060504), v32)

		_, err = p.Uint8()
		require.NoError(t, err)

		_, err = p.Uint8()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("big endian", func(t *testing.T) {
		p := NewBytesParser(data, NewConfig().WithEndian(endian.Big()))

		v64, err := p.Uint64()
		require.NoError(t, err)
		require.Equal(t, uint64(0x0102030405060708), v64)
	})

	t.Run("values straddling chunk boundaries", func(t *testing.T) {
		p := NewParser(newChunkedBuf(data, 3), littleConfig())

		v64, err := p.Uint64()
		require.NoError(t, err)
		require.Equal(t, uint64(0x0807060504030201), v64)
	})

	t.Run("truncated input reports EOF", func(t *testing.T) {
		p := NewBytesParser(data[:3], littleConfig())

		_, err := p.Uint64()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})
}

func TestParserBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}

	t.Run("in-memory input is borrowed without copying", func(t *testing.T) {
		p := NewBytesParser(data, littleConfig())

		got, err := p.Bytes(4)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3, 4}, got)
		require.Same(t, &data[0], &got[0])
	})

	t.Run("streaming input is copied", func(t *testing.T) {
		p := NewParser(newChunkedBuf(data, 2), littleConfig())

		got, err := p.Bytes(5)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3, 4, 5}, got)
	})

	t.Run("negative length is an invalid record", func(t *testing.T) {
		// A u64 length field past math.MaxInt64 wraps negative through
		// int conversion; it must be rejected, not sliced with.
		p := NewBytesParser(data, littleConfig())

		_, err := p.Bytes(-1)
		require.ErrorIs(t, err, errs.ErrInvalidRecord)
	})

	t.Run("zero length reads nothing", func(t *testing.T) {
		p := NewBytesParser(data, littleConfig())

		got, err := p.Bytes(0)
		require.NoError(t, err)
		require.Empty(t, got)

		next, err := p.Uint8()
		require.NoError(t, err)
		require.Equal(t, uint8(1), next)
	})

	t.Run("oversized length reports EOF without huge allocation", func(t *testing.T) {
		// The length claims far more data than exists; the capacity bound
		// keeps the speculative allocation proportional to the input.
		p := NewParser(newChunkedBuf(data, 2), littleConfig())

		_, err := p.Bytes(1 << 40)
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})
}

func TestParserRest(t *testing.T) {
	t.Run("returns all remaining input", func(t *testing.T) {
		data := []byte{1, 2, 3, 4, 5}
		p := NewBytesParser(data, littleConfig())

		rest, err := p.Rest()
		require.NoError(t, err)
		require.Equal(t, data, rest)
		require.Same(t, &data[0], &rest[0])
	})

	t.Run("concatenates streaming chunks", func(t *testing.T) {
		data := []byte{1, 2, 3, 4, 5, 6, 7}
		p := NewParser(newChunkedBuf(data, 3), littleConfig())

		rest, err := p.Rest()
		require.NoError(t, err)
		require.Equal(t, data, rest)
	})

	t.Run("empty input reports EOF", func(t *testing.T) {
		p := NewBytesParser(nil, littleConfig())

		_, err := p.Rest()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("trim nul strips trailing padding", func(t *testing.T) {
		p := NewBytesParser([]byte{'t', 'e', 's', 't', 0, 0, 0, 0}, littleConfig())

		rest, err := p.RestTrimNul()
		require.NoError(t, err)
		require.Equal(t, []byte("test"), rest)
	})

	t.Run("trim nul keeps interior NULs", func(t *testing.T) {
		p := NewBytesParser([]byte{'a', 0, 'b', 0}, littleConfig())

		rest, err := p.RestTrimNul()
		require.NoError(t, err)
		require.Equal(t, []byte{'a', 0, 'b'}, rest)
	})
}

func TestParserUint64s(t *testing.T) {
	words := []uint64{0x1111111111111111, 0x2222222222222222, 0x3333333333333333}
	data := make([]byte, 0, len(words)*8)
	for _, w := range words {
		data = binary.LittleEndian.AppendUint64(data, w)
	}

	t.Run("native order aliases the input", func(t *testing.T) {
		if !endian.IsNativeLittleEndian() {
			t.Skip("fixture bytes are little-endian")
		}

		p := NewBytesParser(data, littleConfig())

		got, err := p.Uint64s(3)
		require.NoError(t, err)
		require.Equal(t, words, got)

		// No copy: the slice reinterprets the input bytes in place.
		require.Equal(t, unsafe.Pointer(unsafe.SliceData(data)), unsafe.Pointer(unsafe.SliceData(got)))
	})

	t.Run("foreign order decodes element-wise", func(t *testing.T) {
		big := make([]byte, 0, len(words)*8)
		for _, w := range words {
			big = binary.BigEndian.AppendUint64(big, w)
		}

		p := NewBytesParser(big, NewConfig().WithEndian(endian.Big()))

		got, err := p.Uint64s(3)
		require.NoError(t, err)
		require.Equal(t, words, got)
	})

	t.Run("streaming input falls back and matches", func(t *testing.T) {
		p := NewParser(newChunkedBuf(data, 5), littleConfig())

		got, err := p.Uint64s(3)
		require.NoError(t, err)
		require.Equal(t, words, got)
	})

	t.Run("wrapped negative count is invalid", func(t *testing.T) {
		p := NewBytesParser(data, littleConfig())

		_, err := p.Uint64s(-1)
		require.ErrorIs(t, err, errs.ErrInvalidRecord)
	})
}

func TestParseHeader(t *testing.T) {
	data := []byte{
		0x09, 0x00, 0x00, 0x00, // type = SAMPLE
		0x02, 0x00, // misc = user mode
		0x28, 0x00, // size = 40
	}

	p := NewBytesParser(data, littleConfig())

	header, err := p.ParseHeader()
	require.NoError(t, err)
	require.Equal(t, RecordSample, header.Type)
	require.Equal(t, CPUModeUser, header.Misc.CPUMode())
	require.Equal(t, uint16(40), header.Size)
}

func TestParseMetadata(t *testing.T) {
	t.Run("zero header size is invalid", func(t *testing.T) {
		data := []byte{0, 0, 0, 0, 0, 0, 0, 0}
		p := NewBytesParser(data, littleConfig())

		_, _, err := p.ParseMetadata()
		require.ErrorIs(t, err, errs.ErrInvalidRecord)
	})

	t.Run("size larger than available input reports EOF", func(t *testing.T) {
		data := []byte{9, 0, 0, 0, 0, 251, 85, 182, 246}
		p := NewBytesParser(data, littleConfig())

		_, _, err := p.ParseMetadata()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("size too small for the implied trailer is invalid", func(t *testing.T) {
		cfg := littleConfig().
			WithSampleFormat(SampleFormatTID | SampleFormatTime).
			WithSampleIDAll(true)

		// COMM record declaring 12 bytes of body; the trailer alone needs 16.
		data := []byte{
			0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x14, 0x00,
			1, 0, 0, 0, 2, 0, 0, 0, 'x', 0, 0, 0,
		}
		p := NewBytesParser(data, cfg)

		_, _, err := p.ParseMetadata()
		require.ErrorIs(t, err, errs.ErrInvalidRecord)
	})

	t.Run("splits body and trailer", func(t *testing.T) {
		cfg := littleConfig().
			WithSampleFormat(SampleFormatTID | SampleFormatTime).
			WithSampleIDAll(true)

		var data []byte
		data = binary.LittleEndian.AppendUint32(data, uint32(RecordExit))
		data = binary.LittleEndian.AppendUint16(data, 0)
		data = binary.LittleEndian.AppendUint16(data, 8+24+16) // header + body + trailer

		// Exit body.
		data = binary.LittleEndian.AppendUint32(data, 100) // pid
		data = binary.LittleEndian.AppendUint32(data, 200) // ppid
		data = binary.LittleEndian.AppendUint32(data, 101) // tid
		data = binary.LittleEndian.AppendUint32(data, 201) // ptid
		data = binary.LittleEndian.AppendUint64(data, 77)  // time

		// sample_id trailer: pid/tid then time.
		data = binary.LittleEndian.AppendUint32(data, 100)
		data = binary.LittleEndian.AppendUint32(data, 101)
		data = binary.LittleEndian.AppendUint64(data, 78)

		p := NewBytesParser(data, cfg)

		rp, md, err := p.ParseMetadata()
		require.NoError(t, err)
		require.Equal(t, RecordExit, md.Type)

		pid, ok := md.SampleID.PID()
		require.True(t, ok)
		require.Equal(t, uint32(100), pid)

		tid, ok := md.SampleID.TID()
		require.True(t, ok)
		require.Equal(t, uint32(101), tid)

		tm, ok := md.SampleID.Time()
		require.True(t, ok)
		require.Equal(t, uint64(78), tm)

		_, ok = md.SampleID.CPU()
		require.False(t, ok)

		var exit Exit
		require.NoError(t, exit.DecodeFrom(rp))
		require.Equal(t, uint32(100), exit.PID)
		require.Equal(t, uint64(77), exit.Time)

		// The whole record was consumed from the outer stream.
		_, _, err = p.ParseMetadata()
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("misc is injected into the body parser config", func(t *testing.T) {
		var data []byte
		data = binary.LittleEndian.AppendUint32(data, uint32(RecordComm))
		data = binary.LittleEndian.AppendUint16(data, uint16(MiscCommExec))
		data = binary.LittleEndian.AppendUint16(data, 8)

		p := NewBytesParser(data, littleConfig())

		rp, md, err := p.ParseMetadata()
		require.NoError(t, err)
		require.True(t, md.Misc.Has(MiscCommExec))
		require.True(t, rp.Config().Misc().Has(MiscCommExec))
	})
}

// skippingVisitor counts records it declined to decode.
type skippingVisitor struct {
	skipped []RecordType
}

func (v *skippingVisitor) VisitUnimplemented(md *RecordMetadata) error {
	v.skipped = append(v.skipped, md.Type)
	return nil
}

func TestParseRecordSkipsUnhandledKinds(t *testing.T) {
	var data []byte

	// A COMM record followed by an EXIT record.
	data = binary.LittleEndian.AppendUint32(data, uint32(RecordComm))
	data = binary.LittleEndian.AppendUint16(data, 0)
	data = binary.LittleEndian.AppendUint16(data, 8+16)
	data = append(data,
		0x10, 0x10, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00,
		't', 'e', 's', 't', 0x00, 0x00, 0x00, 0x00,
	)

	data = binary.LittleEndian.AppendUint32(data, uint32(RecordExit))
	data = binary.LittleEndian.AppendUint16(data, 0)
	data = binary.LittleEndian.AppendUint16(data, 8+24)
	data = append(data,
		1, 0, 0, 0, 2, 0, 0, 0,
		3, 0, 0, 0, 4, 0, 0, 0,
		5, 0, 0, 0, 0, 0, 0, 0,
	)

	p := NewBytesParser(data, littleConfig())

	v := &skippingVisitor{}
	require.NoError(t, p.ParseRecord(v))

	// Skipping the COMM payload must leave the stream aligned on the next
	// record boundary.
	require.NoError(t, p.ParseRecord(v))
	require.Equal(t, []RecordType{RecordComm, RecordExit}, v.skipped)
}

func TestNextRecord(t *testing.T) {
	t.Run("full MMAP frame", func(t *testing.T) {
		var data []byte
		data = binary.LittleEndian.AppendUint32(data, uint32(RecordMmap))
		data = binary.LittleEndian.AppendUint16(data, 0)
		data = binary.LittleEndian.AppendUint16(data, 48)
		data = append(data,
			10, 100, 0, 0, 11, 100, 0, 0,
			0, 160, 118, 129, 189, 127, 0, 0,
			0, 16, 0, 0, 0, 0, 0, 0,
			0, 160, 118, 129, 189, 127, 0, 0,
			47, 47, 97, 110, 111, 110, 0, 0,
		)

		p := NewBytesParser(data, littleConfig())

		rec, md, err := p.NextRecord()
		require.NoError(t, err)
		require.Equal(t, RecordMmap, md.Type)

		mmap, ok := rec.(*Mmap)
		require.True(t, ok)
		require.Equal(t, uint32(25610), mmap.PID)
		require.Equal(t, uint32(25611), mmap.TID)
		require.Equal(t, uint64(0x7FBD8176A000), mmap.Addr)
		require.Equal(t, uint64(4096), mmap.Len)
		require.Equal(t, uint64(0x7FBD8176A000), mmap.Pgoff)
		require.Equal(t, []byte("//anon"), mmap.Filename)
	})

	t.Run("unknown record type yields the raw body", func(t *testing.T) {
		var data []byte
		data = binary.LittleEndian.AppendUint32(data, 0x7777)
		data = binary.LittleEndian.AppendUint16(data, 0)
		data = binary.LittleEndian.AppendUint16(data, 8+4)
		data = append(data, 0xDE, 0xAD, 0xBE, 0xEF)

		p := NewBytesParser(data, littleConfig())

		rec, md, err := p.NextRecord()
		require.NoError(t, err)
		require.Equal(t, RecordType(0x7777), md.Type)

		unknown, ok := rec.(*UnknownRecord)
		require.True(t, ok)
		require.Equal(t, RecordType(0x7777), unknown.Type)
		require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, unknown.Data)
	})

	t.Run("streaming input decodes identically", func(t *testing.T) {
		var data []byte
		data = binary.LittleEndian.AppendUint32(data, uint32(RecordComm))
		data = binary.LittleEndian.AppendUint16(data, 0)
		data = binary.LittleEndian.AppendUint16(data, 8+16)
		data = append(data,
			0x10, 0x10, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00,
			't', 'e', 's', 't', 0x00, 0x00, 0x00, 0x00,
		)

		p := NewParser(newChunkedBuf(data, 5), littleConfig())

		rec, _, err := p.NextRecord()
		require.NoError(t, err)

		comm, ok := rec.(*Comm)
		require.True(t, ok)
		require.Equal(t, uint32(0x1010), comm.PID)
		require.Equal(t, []byte("test"), comm.Comm)
	})
}

func FuzzNextRecord(f *testing.F) {
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0}, uint64(0), uint8(0), false)
	f.Add([]byte{9, 0, 0, 0, 0, 251, 85, 182, 246}, uint64(0), uint8(0), false)

	var comm []byte
	comm = binary.LittleEndian.AppendUint32(comm, uint32(RecordComm))
	comm = binary.LittleEndian.AppendUint16(comm, 0)
	comm = binary.LittleEndian.AppendUint16(comm, 24)
	comm = append(comm, 0x10, 0x10, 0, 0, 0, 5, 0, 0, 't', 'e', 's', 't', 0, 0, 0, 0)
	f.Add(comm, uint64(SampleFormatTID|SampleFormatTime), uint8(ReadFormatID), true)

	f.Fuzz(func(_ *testing.T, data []byte, sampleType uint64, readFormat uint8, sidAll bool) {
		cfg := littleConfig().
			WithSampleFormat(SampleFormat(sampleType)).
			WithReadFormat(ReadFormat(readFormat)).
			WithSampleIDAll(sidAll)

		p := NewBytesParser(data, cfg)
		for {
			if _, _, err := p.NextRecord(); err != nil {
				break
			}
		}
	})
}
