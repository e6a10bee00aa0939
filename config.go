package pevent

import "github.com/arloliu/pevent/endian"

// Packed layout of the Config state word.
//
// Bit layout (LSB first):
//
//	Bit 0-15:  misc field of the record being decoded
//	Bit 16:    sample_id_all flag
//	Bit 17:    branch stack hardware index flag
//	Bit 18-63: reserved
const (
	cfgMiscMask  uint64 = 0xFFFF
	cfgMiscShift        = 0

	cfgSampleIDAllMask uint64 = 1 << 16
	cfgBranchHWMask    uint64 = 1 << 17
)

// Config carries the event configuration a Parser needs to decode records.
//
// The layout of SAMPLE records, the sample_id trailer and counter values is
// not self-describing; it is fixed by the perf_event_attr the counter was
// opened with. Config captures the relevant parts of that descriptor. A
// Config built for one event must only be used to decode that event's
// records.
//
// Config is an immutable value type: the With* methods return a modified
// copy. The zero value decodes records of an event with no optional fields,
// in the host byte order.
type Config struct {
	sampleFormat SampleFormat
	readFormat   ReadFormat
	regsUser     uint64
	regsIntr     uint64
	state        uint64
	engine       endian.Engine
}

// NewConfig creates a Config with no optional sample fields, reading in the
// host byte order. Use the With* methods to describe the event:
//
//	cfg := pevent.NewConfig().
//		WithSampleFormat(pevent.SampleFormatTID | pevent.SampleFormatTime).
//		WithSampleIDAll(true)
func NewConfig() Config {
	return Config{engine: endian.Native()}
}

// WithEndian returns a copy of the config that decodes with the given byte
// order engine.
func (c Config) WithEndian(engine endian.Engine) Config {
	c.engine = engine
	return c
}

// WithSampleFormat returns a copy of the config with the given sample_type
// bitmask.
func (c Config) WithSampleFormat(f SampleFormat) Config {
	c.sampleFormat = f
	return c
}

// WithReadFormat returns a copy of the config with the given read_format
// bitmask.
func (c Config) WithReadFormat(f ReadFormat) Config {
	c.readFormat = f
	return c
}

// WithRegsUser returns a copy of the config with the given user register
// mask. The mask determines how many register values a SAMPLE record with
// SampleFormatRegsUser carries.
func (c Config) WithRegsUser(mask uint64) Config {
	c.regsUser = mask
	return c
}

// WithRegsIntr returns a copy of the config with the given interrupt
// register mask.
func (c Config) WithRegsIntr(mask uint64) Config {
	c.regsIntr = mask
	return c
}

// WithSampleIDAll returns a copy of the config with the sample_id_all flag
// set or cleared. When set, every record type except MMAP and SAMPLE carries
// a sample_id trailer.
func (c Config) WithSampleIDAll(enabled bool) Config {
	c.state = setStateBit(c.state, cfgSampleIDAllMask, enabled)
	return c
}

// WithBranchHWIndex returns a copy of the config with the branch stack
// hardware index flag set or cleared. When set, the branch stack in SAMPLE
// records is preceded by a hardware index word.
func (c Config) WithBranchHWIndex(enabled bool) Config {
	c.state = setStateBit(c.state, cfgBranchHWMask, enabled)
	return c
}

// withMisc returns a copy of the config carrying the misc field of the
// record currently being decoded. Dispatch injects it so record decoders can
// key off per-record misc bits, such as the MMAP2 build-id layout.
func (c Config) withMisc(misc MiscFlags) Config {
	c.state = (c.state &^ (cfgMiscMask << cfgMiscShift)) | (uint64(misc) << cfgMiscShift)
	return c
}

// Endian returns the byte order engine records are decoded with.
func (c Config) Endian() endian.Engine {
	if c.engine == nil {
		return endian.Native()
	}

	return c.engine
}

// SampleFormat returns the sample_type bitmask.
func (c Config) SampleFormat() SampleFormat {
	return c.sampleFormat
}

// ReadFormat returns the read_format bitmask.
func (c Config) ReadFormat() ReadFormat {
	return c.readFormat
}

// RegsUser returns the user register mask.
func (c Config) RegsUser() uint64 {
	return c.regsUser
}

// RegsIntr returns the interrupt register mask.
func (c Config) RegsIntr() uint64 {
	return c.regsIntr
}

// SampleIDAll reports whether records carry a sample_id trailer.
func (c Config) SampleIDAll() bool {
	return c.state&cfgSampleIDAllMask != 0
}

// BranchHWIndex reports whether branch stacks carry a hardware index word.
func (c Config) BranchHWIndex() bool {
	return c.state&cfgBranchHWMask != 0
}

// Misc returns the misc field of the record being decoded. It is only
// meaningful inside record decoders, after dispatch has injected the header.
func (c Config) Misc() MiscFlags {
	return MiscFlags((c.state >> cfgMiscShift) & cfgMiscMask)
}

func setStateBit(state, mask uint64, enabled bool) uint64 {
	if enabled {
		return state | mask
	}

	return state &^ mask
}
