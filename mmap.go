package pevent

import (
	"fmt"

	"github.com/arloliu/pevent/errs"
)

// Mmap records a memory mapping created by a traced process. Profilers use
// these to map sampled instruction pointers back to file offsets.
type Mmap struct {
	PID      uint32
	TID      uint32
	Addr     uint64
	Len      uint64
	Pgoff    uint64
	Filename []byte
}

// Kind returns RecordMmap.
func (r *Mmap) Kind() RecordType { return RecordMmap }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Mmap) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}
	if r.TID, err = p.Uint32(); err != nil {
		return err
	}
	if r.Addr, err = p.Uint64(); err != nil {
		return err
	}
	if r.Len, err = p.Uint64(); err != nil {
		return err
	}
	if r.Pgoff, err = p.Uint64(); err != nil {
		return err
	}

	r.Filename, err = p.RestTrimNul()

	return err
}

// buildIDMaxLen is the fixed wire width of the MMAP2 build-id field.
const buildIDMaxLen = 20

// Mmap2 is the extended mapping record, carrying protection and device or
// build-id identity in addition to the Mmap fields.
//
// The identity block is a union selected by the record's misc flags: with
// MiscMmapBuildID set the kernel replaces Maj, Min, Ino and InoGeneration
// with the mapped file's build-id, reported here in BuildID. BuildID is nil
// for device-identity records.
type Mmap2 struct {
	PID           uint32
	TID           uint32
	Addr          uint64
	Len           uint64
	Pgoff         uint64
	Maj           uint32
	Min           uint32
	Ino           uint64
	InoGeneration uint64
	Prot          uint32
	Flags         uint32
	BuildID       []byte
	Filename      []byte
}

// Kind returns RecordMmap2.
func (r *Mmap2) Kind() RecordType { return RecordMmap2 }

// AsMmap downcasts to the common fields shared with Mmap. This loses the
// protection, flags and identity fields.
func (r *Mmap2) AsMmap() *Mmap {
	return &Mmap{
		PID:      r.PID,
		TID:      r.TID,
		Addr:     r.Addr,
		Len:      r.Len,
		Pgoff:    r.Pgoff,
		Filename: r.Filename,
	}
}

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Mmap2) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}
	if r.TID, err = p.Uint32(); err != nil {
		return err
	}
	if r.Addr, err = p.Uint64(); err != nil {
		return err
	}
	if r.Len, err = p.Uint64(); err != nil {
		return err
	}
	if r.Pgoff, err = p.Uint64(); err != nil {
		return err
	}

	if p.Config().Misc().Has(MiscMmapBuildID) {
		if err := r.decodeBuildID(p); err != nil {
			return err
		}
	} else {
		if err := r.decodeDeviceID(p); err != nil {
			return err
		}
	}

	if r.Prot, err = p.Uint32(); err != nil {
		return err
	}
	if r.Flags, err = p.Uint32(); err != nil {
		return err
	}

	r.Filename, err = p.RestTrimNul()

	return err
}

func (r *Mmap2) decodeDeviceID(p *Parser) error {
	var err error
	if r.Maj, err = p.Uint32(); err != nil {
		return err
	}
	if r.Min, err = p.Uint32(); err != nil {
		return err
	}
	if r.Ino, err = p.Uint64(); err != nil {
		return err
	}

	r.InoGeneration, err = p.Uint64()

	return err
}

func (r *Mmap2) decodeBuildID(p *Parser) error {
	size, err := p.Uint8()
	if err != nil {
		return err
	}
	if size > buildIDMaxLen {
		return fmt.Errorf("mmap2 build-id length %d exceeds the %d byte field: %w",
			size, buildIDMaxLen, errs.ErrInvalidRecord)
	}

	// One reserved byte and a reserved u16 pad the length to four bytes.
	if _, err := p.Uint8(); err != nil {
		return err
	}
	if _, err := p.Uint16(); err != nil {
		return err
	}

	buildID, err := p.Bytes(buildIDMaxLen)
	if err != nil {
		return err
	}

	r.BuildID = buildID[:size]

	return nil
}
