package pevent

import "math/bits"

// Presence bits for SampleID fields.
const (
	sidTID uint8 = 1 << iota
	sidTime
	sidID
	sidStreamID
	sidCPU
)

// SampleID is the trailer appended to every record except MMAP and SAMPLE
// when the event is configured with sample_id_all. Which fields are present
// depends on the event's sample_type; absent fields report ok == false.
type SampleID struct {
	set      uint8
	pid      uint32
	tid      uint32
	time     uint64
	id       uint64
	streamID uint64
	cpu      uint32
}

// PID returns the process ID that generated the record.
func (s *SampleID) PID() (uint32, bool) {
	return s.pid, s.set&sidTID != 0
}

// TID returns the thread ID that generated the record.
func (s *SampleID) TID() (uint32, bool) {
	return s.tid, s.set&sidTID != 0
}

// Time returns the timestamp of the record. The clock it was read from is
// whatever the event was configured with.
func (s *SampleID) Time() (uint64, bool) {
	return s.time, s.set&sidTime != 0
}

// ID returns the kernel-assigned ID of the counter group leader.
func (s *SampleID) ID() (uint64, bool) {
	return s.id, s.set&sidID != 0
}

// StreamID returns the kernel-assigned ID of the counter that generated the
// record.
func (s *SampleID) StreamID() (uint64, bool) {
	return s.streamID, s.set&sidStreamID != 0
}

// CPU returns the CPU the record was generated on.
func (s *SampleID) CPU() (uint32, bool) {
	return s.cpu, s.set&sidCPU != 0
}

// sampleIDLen returns the wire length of the trailer under cfg. Every
// present field occupies eight bytes: CPU is a u32 pair and IDENTIFIER
// repeats the ID field, so the length is just the count of contributing
// sample_type bits.
func sampleIDLen(cfg Config) int {
	if !cfg.SampleIDAll() {
		return 0
	}

	const contributing = SampleFormatTID | SampleFormatTime | SampleFormatID |
		SampleFormatStreamID | SampleFormatCPU | SampleFormatIdentifier

	return bits.OnesCount64(uint64(cfg.SampleFormat()&contributing)) * 8
}

// decodeFrom reads the trailer fields selected by the parser's config. When
// both ID and IDENTIFIER are selected the trailer carries the value twice;
// the first occurrence wins and the duplicate is consumed.
func (s *SampleID) decodeFrom(p *Parser) error {
	cfg := p.Config()
	if !cfg.SampleIDAll() {
		return nil
	}

	sf := cfg.SampleFormat()

	if sf.Has(SampleFormatTID) {
		pid, err := p.Uint32()
		if err != nil {
			return err
		}

		tid, err := p.Uint32()
		if err != nil {
			return err
		}

		s.pid, s.tid = pid, tid
		s.set |= sidTID
	}

	if sf.Has(SampleFormatTime) {
		t, err := p.Uint64()
		if err != nil {
			return err
		}

		s.time = t
		s.set |= sidTime
	}

	if sf.Has(SampleFormatID) {
		id, err := p.Uint64()
		if err != nil {
			return err
		}

		s.id = id
		s.set |= sidID
	}

	if sf.Has(SampleFormatStreamID) {
		sid, err := p.Uint64()
		if err != nil {
			return err
		}

		s.streamID = sid
		s.set |= sidStreamID
	}

	if sf.Has(SampleFormatCPU) {
		cpu, err := p.Uint32()
		if err != nil {
			return err
		}

		if _, err := p.Uint32(); err != nil { // reserved
			return err
		}

		s.cpu = cpu
		s.set |= sidCPU
	}

	if sf.Has(SampleFormatIdentifier) {
		id, err := p.Uint64()
		if err != nil {
			return err
		}

		if s.set&sidID == 0 {
			s.id = id
			s.set |= sidID
		}
	}

	return nil
}
