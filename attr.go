package pevent

import (
	"fmt"

	"github.com/arloliu/pevent/errs"
)

// attrPrefixLen is the wire size of the descriptor prefix: type u32 and
// size u32. The size field counts the whole descriptor including the
// prefix.
const attrPrefixLen = 8

// Known perf_event_attr sizes, one per kernel revision of the struct. The
// kernel's PERF_ATTR_SIZE_VER* constants.
const (
	attrSizeVer0 uint32 = 64
	attrSizeVer1 uint32 = 72
	attrSizeVer2 uint32 = 80
	attrSizeVer3 uint32 = 96
	attrSizeVer4 uint32 = 104
	attrSizeVer5 uint32 = 112
	attrSizeVer6 uint32 = 120
	attrSizeVer7 uint32 = 128
	attrSizeVer8 uint32 = 136

	attrSizeMax = attrSizeVer8
)

// AttrFlags is the packed flag word of a perf_event_attr, matching the
// kernel's bitfield bit for bit. PreciseIP occupies two bits and has its own
// accessor.
type AttrFlags uint64

const (
	AttrDisabled AttrFlags = 1 << iota
	AttrInherit
	AttrPinned
	AttrExclusive
	AttrExcludeUser
	AttrExcludeKernel
	AttrExcludeHV
	AttrExcludeIdle
	AttrMmap
	AttrComm
	AttrFreq
	AttrInheritStat
	AttrEnableOnExec
	AttrTask
	AttrWatermark
	attrPreciseIPLow
	attrPreciseIPHigh
	AttrMmapData
	AttrSampleIDAll
	AttrExcludeHost
	AttrExcludeGuest
	AttrExcludeCallchainKernel
	AttrExcludeCallchainUser
	AttrMmap2
	AttrCommExec
	AttrUseClockID
	AttrContextSwitch
	AttrWriteBackward
	AttrNamespaces
	AttrKsymbol
	AttrBpfEvent
	AttrAuxOutput
	AttrCgroup
	AttrTextPoke
	AttrBuildID
	AttrInheritThread
	AttrRemoveOnExec
	AttrSigTrap
)

// Has reports whether all bits in flags are set in f.
func (f AttrFlags) Has(flags AttrFlags) bool {
	return f&flags == flags
}

// PreciseIP returns the skid constraint requested for sampled instruction
// pointers, 0 (arbitrary skid) through 3 (must have zero skid).
func (f AttrFlags) PreciseIP() uint8 {
	return uint8((f >> 15) & 3)
}

// EventAttr is a decoded perf_event_attr, the kernel descriptor an event was
// opened with. Captured streams store one per event; decoding it recovers
// the Config needed to decode the event's records.
//
// The struct has grown over kernel releases, with Size recording which
// revision the producer wrote. Fields beyond the stored size keep their zero
// value. Fields that are unions on the wire (sample period/frequency,
// wakeup events/watermark, the three config extensions) are kept under a
// single name; the active interpretation depends on Flags and Type.
type EventAttr struct {
	Type               uint32
	Size               uint32
	Config             uint64
	SamplePeriod       uint64
	SampleFormat       SampleFormat
	ReadFormat         ReadFormat
	Flags              AttrFlags
	WakeupEvents       uint32
	BPType             uint32
	Config1            uint64
	Config2            uint64
	BranchSampleFormat BranchSampleFormat
	SampleRegsUser     uint64
	SampleStackUser    uint32
	ClockID            int32
	SampleRegsIntr     uint64
	AuxWatermark       uint32
	SampleMaxStack     uint16
	AuxSampleSize      uint32
	SigData            uint64
	Config3            uint64
}

// validAttrSize accepts the sizes the kernel has ever written plus any
// larger future size; sizes below or between known revisions are corrupt.
func validAttrSize(size uint32) bool {
	switch size {
	case attrSizeVer0, attrSizeVer1, attrSizeVer2, attrSizeVer3, attrSizeVer4,
		attrSizeVer5, attrSizeVer6, attrSizeVer7, attrSizeVer8:
		return true
	default:
		return size > attrSizeMax
	}
}

// DecodeFrom reads a perf_event_attr from the parser.
//
// Exactly Size bytes are consumed regardless of the revision decoded, so a
// sequence of descriptors can be decoded back to back. A descriptor larger
// than the newest known revision is accepted as long as the extra tail bytes
// are all zero; a non-zero tail means it carries fields this package would
// silently mis-decode, and fails with errs.ErrInvalidRecord.
func (a *EventAttr) DecodeFrom(p *Parser) error {
	var err error
	if a.Type, err = p.Uint32(); err != nil {
		return err
	}
	if a.Size, err = p.Uint32(); err != nil {
		return err
	}

	if !validAttrSize(a.Size) {
		return fmt.Errorf("%d is not a valid perf_event_attr size: %w",
			a.Size, errs.ErrInvalidRecord)
	}

	cur, err := newCursor(p.buf, int(a.Size)-attrPrefixLen)
	if err != nil {
		return err
	}

	bp := &Parser{buf: cur, cfg: p.cfg}
	if data, ok := cur.asSlice(); ok {
		bp.buf = NewBytesBuf(data)
	}

	return a.decodeBody(bp)
}

// decodeBody reads the post-prefix fields from a parser scoped to exactly
// Size - 8 bytes. Each revision appends fields after the previous one's, so
// the decode is a straight run gated on Size.
func (a *EventAttr) decodeBody(p *Parser) error {
	var err error

	// Ver0 fields are always present; validAttrSize rejected anything
	// smaller.
	if a.Config, err = p.Uint64(); err != nil {
		return err
	}
	if a.SamplePeriod, err = p.Uint64(); err != nil {
		return err
	}

	sf, err := p.Uint64()
	if err != nil {
		return err
	}
	a.SampleFormat = SampleFormat(sf)

	rf, err := p.Uint64()
	if err != nil {
		return err
	}
	a.ReadFormat = ReadFormat(rf)

	flags, err := p.Uint64()
	if err != nil {
		return err
	}
	a.Flags = AttrFlags(flags)

	if a.WakeupEvents, err = p.Uint32(); err != nil {
		return err
	}
	if a.BPType, err = p.Uint32(); err != nil {
		return err
	}
	if a.Config1, err = p.Uint64(); err != nil {
		return err
	}

	if a.Size >= attrSizeVer1 {
		if a.Config2, err = p.Uint64(); err != nil {
			return err
		}
	}

	if a.Size >= attrSizeVer2 {
		bsf, err := p.Uint64()
		if err != nil {
			return err
		}
		a.BranchSampleFormat = BranchSampleFormat(bsf)
	}

	if a.Size >= attrSizeVer3 {
		if a.SampleRegsUser, err = p.Uint64(); err != nil {
			return err
		}
		if a.SampleStackUser, err = p.Uint32(); err != nil {
			return err
		}

		clockid, err := p.Uint32()
		if err != nil {
			return err
		}
		a.ClockID = int32(clockid)
	}

	if a.Size >= attrSizeVer4 {
		if a.SampleRegsIntr, err = p.Uint64(); err != nil {
			return err
		}
	}

	if a.Size >= attrSizeVer5 {
		if a.AuxWatermark, err = p.Uint32(); err != nil {
			return err
		}
		if a.SampleMaxStack, err = p.Uint16(); err != nil {
			return err
		}
		if _, err := p.Uint16(); err != nil { // reserved
			return err
		}
	}

	if a.Size >= attrSizeVer6 {
		if a.AuxSampleSize, err = p.Uint32(); err != nil {
			return err
		}
		if _, err := p.Uint32(); err != nil { // reserved
			return err
		}
	}

	if a.Size >= attrSizeVer7 {
		if a.SigData, err = p.Uint64(); err != nil {
			return err
		}
	}

	if a.Size >= attrSizeVer8 {
		if a.Config3, err = p.Uint64(); err != nil {
			return err
		}
	}

	if a.Size > attrSizeMax {
		tail, err := p.Rest()
		if err != nil {
			return err
		}

		for _, b := range tail {
			if b != 0 {
				return fmt.Errorf("perf_event_attr of size %d carries unknown non-zero fields: %w",
					a.Size, errs.ErrInvalidRecord)
			}
		}
	}

	return nil
}

// ConfigFromAttr builds the Config for decoding records of an event opened
// with attr. The config decodes in the host byte order; use WithEndian for
// foreign-endian captures.
func ConfigFromAttr(attr *EventAttr) Config {
	return NewConfig().
		WithSampleFormat(attr.SampleFormat).
		WithReadFormat(attr.ReadFormat).
		WithRegsUser(attr.SampleRegsUser).
		WithRegsIntr(attr.SampleRegsIntr).
		WithSampleIDAll(attr.Flags.Has(AttrSampleIDAll)).
		WithBranchHWIndex(attr.BranchSampleFormat.Has(BranchSampleHWIndex))
}
