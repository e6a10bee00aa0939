package pevent

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/arloliu/pevent/errs"
)

// defaultCapacityBound caps speculative allocations when the input length is
// unknown. Length fields are decoded from untrusted input, so a corrupt
// record may claim an absurd element count; allocations start at this bound
// and grow only as actual bytes arrive.
const defaultCapacityBound = 16384

// recordHeaderLen is the wire size of a record header: type u32, misc u16,
// size u16.
const recordHeaderLen = 8

// Parser decodes perf_event values and records from a ParseBuf.
//
// A Parser combines a byte source with the Config describing the event that
// produced the bytes. The integer primitives decode in the config's byte
// order; the record operations carve record bodies out of the stream and
// decode them according to the config's format flags.
//
// Parsers are cheap to create and not safe for concurrent use.
type Parser struct {
	buf ParseBuf
	cfg Config
}

// NewParser creates a parser decoding from buf with the given config.
func NewParser(buf ParseBuf, cfg Config) *Parser {
	return &Parser{buf: buf, cfg: cfg}
}

// NewBytesParser creates a parser decoding from an in-memory byte slice.
// Decoded records may alias data directly, so the caller must not mutate it
// while the records are in use.
func NewBytesParser(data []byte, cfg Config) *Parser {
	return NewParser(NewBytesBuf(data), cfg)
}

// Config returns the parser's configuration.
func (p *Parser) Config() Config {
	return p.cfg
}

// take fills dst from the input. The common case is a single chunk holding
// all requested bytes; values straddling a chunk boundary are assembled
// byte-wise.
func (p *Parser) take(dst []byte) error {
	ch, err := p.buf.Chunk()
	if err != nil {
		return err
	}

	if len(ch.Data) >= len(dst) {
		copy(dst, ch.Data)
		p.buf.Advance(len(dst))

		return nil
	}

	filled := 0
	for filled < len(dst) {
		ch, err := p.buf.Chunk()
		if err != nil {
			return err
		}

		n := copy(dst[filled:], ch.Data)
		p.buf.Advance(n)
		filled += n
	}

	return nil
}

// Uint8 decodes a single byte.
func (p *Parser) Uint8() (uint8, error) {
	ch, err := p.buf.Chunk()
	if err != nil {
		return 0, err
	}

	v := ch.Data[0]
	p.buf.Advance(1)

	return v, nil
}

// Uint16 decodes a 16-bit integer in the configured byte order.
func (p *Parser) Uint16() (uint16, error) {
	var b [2]byte
	if err := p.take(b[:]); err != nil {
		return 0, err
	}

	return p.cfg.Endian().Uint16(b[:]), nil
}

// Uint32 decodes a 32-bit integer in the configured byte order.
func (p *Parser) Uint32() (uint32, error) {
	var b [4]byte
	if err := p.take(b[:]); err != nil {
		return 0, err
	}

	return p.cfg.Endian().Uint32(b[:]), nil
}

// Uint64 decodes a 64-bit integer in the configured byte order.
func (p *Parser) Uint64() (uint64, error) {
	var b [8]byte
	if err := p.take(b[:]); err != nil {
		return 0, err
	}

	return p.cfg.Endian().Uint64(b[:]), nil
}

// bytesDirect attempts to satisfy an n byte read by borrowing from the
// current chunk. It only succeeds when the chunk is external and holds all n
// bytes.
func (p *Parser) bytesDirect(n int) ([]byte, bool, error) {
	ch, err := p.buf.Chunk()
	if err != nil {
		return nil, false, err
	}

	if !ch.External || len(ch.Data) < n {
		return nil, false, nil
	}

	data := ch.Data[:n]
	p.buf.Advance(n)

	return data, true, nil
}

// bytesSlow copies n bytes out of the input across chunk boundaries.
func (p *Parser) bytesSlow(n int) ([]byte, error) {
	out := make([]byte, 0, min(n, p.capacityBound(1)))

	for len(out) < n {
		ch, err := p.buf.Chunk()
		if err != nil {
			return nil, err
		}

		data := ch.Data
		if len(data) > n-len(out) {
			data = data[:n-len(out)]
		}

		out = append(out, data...)
		p.buf.Advance(len(data))
	}

	return out, nil
}

// Bytes decodes the next n bytes. When the input is a contiguous in-memory
// buffer the returned slice aliases it without copying; otherwise the bytes
// are copied out. Lengths come from untrusted length fields, so a length
// whose u64 wrapped negative is rejected rather than sliced with.
func (p *Parser) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("byte length overflow: %w", errs.ErrInvalidRecord)
	}
	if n == 0 {
		return []byte{}, nil
	}

	data, ok, err := p.bytesDirect(n)
	if err != nil {
		return nil, err
	}
	if ok {
		return data, nil
	}

	return p.bytesSlow(n)
}

// Rest consumes and returns all remaining input. An already-empty input
// yields errs.ErrUnexpectedEOF.
func (p *Parser) Rest() ([]byte, error) {
	ch, err := p.buf.Chunk()
	if err != nil {
		return nil, err
	}

	// A single external chunk covering the whole remainder is returned
	// without copying.
	if hint, ok := p.buf.RemainingHint(); ok && ch.External && len(ch.Data) >= hint {
		data := ch.Data[:hint]
		p.buf.Advance(hint)

		return data, nil
	}

	out := make([]byte, 0, p.capacityBound(1))
	out = append(out, ch.Data...)
	p.buf.Advance(len(ch.Data))

	for {
		ch, err := p.buf.Chunk()
		if err != nil {
			if errors.Is(err, errs.ErrUnexpectedEOF) {
				return out, nil
			}

			return nil, err
		}

		out = append(out, ch.Data...)
		p.buf.Advance(len(ch.Data))
	}
}

// RestTrimNul consumes all remaining input and strips trailing NUL padding.
// Variable-length record strings are padded with NULs up to the 8-byte
// record alignment.
func (p *Parser) RestTrimNul() ([]byte, error) {
	data, err := p.Rest()
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(data, "\x00"), nil
}

// Uint64s decodes n consecutive 64-bit integers. On native-endian input the
// returned slice may alias the input directly.
func (p *Parser) Uint64s(n int) ([]uint64, error) {
	return parseSlice(p, n, (*Parser).Uint64)
}

// capacityBound returns the largest element count worth pre-allocating for
// a slice of elemSize-byte elements.
func (p *Parser) capacityBound(elemSize int) int {
	if elemSize <= 0 {
		return math.MaxInt
	}

	bound := defaultCapacityBound
	if hint, ok := p.buf.RemainingHint(); ok {
		bound = hint
	}

	return bound / elemSize
}

// sliceDirect attempts to reinterpret the next n values of T in place,
// without decoding element by element. This only applies when the input byte
// order is the host's, the bytes sit contiguously in an external chunk, and
// that chunk is aligned for T. All preconditions are checked before any
// input is consumed; when the reinterpretation does not apply the input is
// untouched and the caller falls back to element-wise decoding.
//
// T must be a type whose in-memory layout matches its wire layout exactly.
func sliceDirect[T any](p *Parser, n int) ([]T, bool) {
	if !p.cfg.Endian().IsNative() {
		return nil, false
	}

	if n <= 0 {
		return nil, n == 0
	}

	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 || n > math.MaxInt/size {
		return nil, false
	}

	ch, err := p.buf.Chunk()
	if err != nil || !ch.External || len(ch.Data) < n*size {
		return nil, false
	}

	ptr := unsafe.Pointer(unsafe.SliceData(ch.Data))
	if uintptr(ptr)%unsafe.Alignof(zero) != 0 {
		return nil, false
	}

	out := unsafe.Slice((*T)(ptr), n)
	p.buf.Advance(n * size)

	return out, true
}

// parseRepeated decodes n consecutive values element by element. Counts come
// from untrusted length fields, so a count whose u64 wrapped negative is
// rejected rather than decoded as empty.
func parseRepeated[T any](p *Parser, n int, parse func(*Parser) (T, error)) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("element count overflow: %w", errs.ErrInvalidRecord)
	}

	var zero T
	out := make([]T, 0, min(n, p.capacityBound(int(unsafe.Sizeof(zero)))))

	for range n {
		v, err := parse(p)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// parseSlice decodes n consecutive values, reinterpreting the input in place
// when possible and falling back to element-wise decoding otherwise.
func parseSlice[T any](p *Parser, n int, parse func(*Parser) (T, error)) ([]T, error) {
	if out, ok := sliceDirect[T](p, n); ok {
		return out, nil
	}

	return parseRepeated(p, n, parse)
}

// ParseHeader decodes the 8-byte record header framing every record.
func (p *Parser) ParseHeader() (RecordHeader, error) {
	ty, err := p.Uint32()
	if err != nil {
		return RecordHeader{}, err
	}

	misc, err := p.Uint16()
	if err != nil {
		return RecordHeader{}, err
	}

	size, err := p.Uint16()
	if err != nil {
		return RecordHeader{}, err
	}

	return RecordHeader{Type: RecordType(ty), Misc: MiscFlags(misc), Size: size}, nil
}

// ParseMetadata decodes the next record's header and sample_id trailer, and
// returns a parser scoped to exactly the record's body bytes.
//
// The record body is fully consumed from the input regardless of how much of
// the returned parser the caller uses, so the stream stays aligned on record
// boundaries. Most callers want ParseRecord or NextRecord instead; this is
// the entry point for decoding record payloads by hand.
//
// Returns:
//   - a parser over the record body, with the record's misc flags applied
//   - the record metadata (type, misc flags, sample_id trailer)
//   - errs.ErrInvalidRecord if the declared size cannot hold the header and
//     trailer, or errs.ErrUnexpectedEOF if the input ends inside the record
func (p *Parser) ParseMetadata() (*Parser, *RecordMetadata, error) {
	header, err := p.ParseHeader()
	if err != nil {
		return nil, nil, err
	}

	return p.ParseMetadataWithHeader(header)
}

// ParseMetadataWithHeader is ParseMetadata for callers that have already
// decoded the record header.
func (p *Parser) ParseMetadataWithHeader(header RecordHeader) (*Parser, *RecordMetadata, error) {
	if int(header.Size) < recordHeaderLen {
		return nil, nil, fmt.Errorf("record size %d is smaller than the record header: %w",
			header.Size, errs.ErrInvalidRecord)
	}

	dataLen := int(header.Size) - recordHeaderLen
	cfg := p.cfg.withMisc(header.Misc)
	md := &RecordMetadata{Type: header.Type, Misc: header.Misc}

	// MMAP predates the sample_id trailer and SAMPLE carries the same
	// fields inline; every other record type ends with the trailer when
	// sample_id_all is configured.
	hasTrailer := header.Type != RecordMmap && header.Type != RecordSample
	bodyLen := dataLen
	if hasTrailer {
		trailerLen := sampleIDLen(cfg)
		if dataLen < trailerLen {
			return nil, nil, fmt.Errorf("record size %d cannot hold its sample_id trailer: %w",
				header.Size, errs.ErrInvalidRecord)
		}

		bodyLen = dataLen - trailerLen
	}

	cur, err := newCursor(p.buf, bodyLen)
	if err != nil {
		return nil, nil, err
	}

	if hasTrailer && cfg.SampleIDAll() {
		tp := &Parser{buf: p.buf, cfg: cfg}
		if err := md.SampleID.decodeFrom(tp); err != nil {
			return nil, nil, err
		}
	}

	// A contiguous body degrades back to a plain in-memory buffer so the
	// record decoders can use the borrow fast paths.
	rp := &Parser{buf: cur, cfg: cfg}
	if data, ok := cur.asSlice(); ok {
		rp.buf = NewBytesBuf(data)
	}

	return rp, md, nil
}

// ParseRecord decodes the next record and hands it to the matching visitor
// method. Record kinds the visitor does not implement are skipped without
// decoding their payload; the visitor's VisitUnimplemented is called with
// the metadata instead.
//
// Returns the error from the visitor callback, or a decode error:
// errs.ErrInvalidRecord, errs.ErrUnexpectedEOF, errs.ErrUnsupportedConfig,
// or a wrapped backend read failure.
func (p *Parser) ParseRecord(v Visitor) error {
	header, err := p.ParseHeader()
	if err != nil {
		return err
	}

	return p.ParseRecordWithHeader(header, v)
}

// ParseRecordWithHeader is ParseRecord for callers that have already decoded
// the record header.
func (p *Parser) ParseRecordWithHeader(header RecordHeader, v Visitor) error {
	rp, md, err := p.ParseMetadataWithHeader(header)
	if err != nil {
		return err
	}

	return dispatchRecord(rp, md, v)
}

// NextRecord decodes the next record into the canonical Record union. Use
// ParseRecord with a visitor to avoid decoding record kinds you do not care
// about.
func (p *Parser) NextRecord() (Record, *RecordMetadata, error) {
	var b recordBuilder
	if err := p.ParseRecord(&b); err != nil {
		return nil, nil, err
	}

	return b.record, b.metadata, nil
}
