package pevent

// BpfEventType identifies what a BPF_EVENT record describes, matching
// PERF_BPF_EVENT_*.
type BpfEventType uint16

const (
	BpfEventTypeUnknown BpfEventType = iota
	BpfEventProgLoad
	BpfEventProgUnload
)

// BpfEvent records a BPF program being loaded or unloaded. ID is the BPF
// program ID and Tag its 8-byte tag; further details can be looked up
// through the bpf syscall while the program is still loaded.
type BpfEvent struct {
	Type  BpfEventType
	Flags uint16
	ID    uint32
	Tag   [8]byte
}

// Kind returns RecordBpfEvent.
func (r *BpfEvent) Kind() RecordType { return RecordBpfEvent }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *BpfEvent) DecodeFrom(p *Parser) error {
	ty, err := p.Uint16()
	if err != nil {
		return err
	}
	r.Type = BpfEventType(ty)

	if r.Flags, err = p.Uint16(); err != nil {
		return err
	}
	if r.ID, err = p.Uint32(); err != nil {
		return err
	}

	return p.take(r.Tag[:])
}
