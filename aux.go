package pevent

// AuxFlags is the flags field of an AUX record, matching PERF_AUX_FLAG_*.
// The top byte is a PMU-specific format identifier.
type AuxFlags uint64

const (
	AuxFlagTruncated AuxFlags = 1 << iota
	AuxFlagOverwrite
	AuxFlagPartial
	AuxFlagCollision

	auxFlagPMUFormatMask AuxFlags = 0xFF00
)

// Has reports whether all bits in flags are set in f.
func (f AuxFlags) Has(flags AuxFlags) bool {
	return f&flags == flags
}

// PMUFormatType returns the PMU-specific format byte of the flags.
func (f AuxFlags) PMUFormatType() uint8 {
	return uint8((f & auxFlagPMUFormatMask) >> 8)
}

// Aux records that data was written into the separate AUX sampling area,
// used by high-bandwidth sources like Intel PT. The record only describes
// the region; the data itself lives in the AUX ring buffer.
type Aux struct {
	AuxOffset uint64
	AuxSize   uint64
	Flags     AuxFlags
}

// Kind returns RecordAux.
func (r *Aux) Kind() RecordType { return RecordAux }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Aux) DecodeFrom(p *Parser) error {
	var err error
	if r.AuxOffset, err = p.Uint64(); err != nil {
		return err
	}
	if r.AuxSize, err = p.Uint64(); err != nil {
		return err
	}

	flags, err := p.Uint64()
	if err != nil {
		return err
	}
	r.Flags = AuxFlags(flags)

	return nil
}

// AuxOutputHwID associates a hardware-provided AUX stream identifier with
// the event, letting decoders attribute AUX data when multiple events write
// into one stream.
type AuxOutputHwID struct {
	HwID uint64
}

// Kind returns RecordAuxOutputHwID.
func (r *AuxOutputHwID) Kind() RecordType { return RecordAuxOutputHwID }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *AuxOutputHwID) DecodeFrom(p *Parser) error {
	var err error
	r.HwID, err = p.Uint64()

	return err
}
