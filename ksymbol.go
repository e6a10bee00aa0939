package pevent

// KsymbolType identifies what kind of kernel symbol a KSYMBOL record
// describes, matching PERF_RECORD_KSYMBOL_TYPE_*.
type KsymbolType uint16

const (
	KsymbolTypeUnknown KsymbolType = iota
	KsymbolTypeBPF
	KsymbolTypeOOL
)

// KsymbolFlags is the flags field of a KSYMBOL record.
type KsymbolFlags uint16

// KsymbolUnregister marks the symbol as being removed rather than
// registered.
const KsymbolUnregister KsymbolFlags = 1 << 0

// Has reports whether all bits in flags are set in f.
func (f KsymbolFlags) Has(flags KsymbolFlags) bool {
	return f&flags == flags
}

// Ksymbol records a kernel symbol being registered or unregistered, such as
// a JITed BPF program appearing in kernel space.
type Ksymbol struct {
	Addr  uint64
	Len   uint32
	Type  KsymbolType
	Flags KsymbolFlags
	Name  []byte
}

// Kind returns RecordKsymbol.
func (r *Ksymbol) Kind() RecordType { return RecordKsymbol }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Ksymbol) DecodeFrom(p *Parser) error {
	var err error
	if r.Addr, err = p.Uint64(); err != nil {
		return err
	}
	if r.Len, err = p.Uint32(); err != nil {
		return err
	}

	ty, err := p.Uint16()
	if err != nil {
		return err
	}
	r.Type = KsymbolType(ty)

	flags, err := p.Uint16()
	if err != nil {
		return err
	}
	r.Flags = KsymbolFlags(flags)

	r.Name, err = p.RestTrimNul()

	return err
}
