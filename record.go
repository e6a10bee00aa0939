package pevent

import "fmt"

// RecordType identifies the kind of a record, matching the kernel's
// PERF_RECORD_* constants. Values outside the known range come from
// kernel extensions or PMU drivers and decode as UnknownRecord.
type RecordType uint32

const (
	RecordMmap RecordType = iota + 1
	RecordLost
	RecordComm
	RecordExit
	RecordThrottle
	RecordUnthrottle
	RecordFork
	RecordRead
	RecordSample
	RecordMmap2
	RecordAux
	RecordItraceStart
	RecordLostSamples
	RecordSwitch
	RecordSwitchCPUWide
	RecordNamespaces
	RecordKsymbol
	RecordBpfEvent
	RecordCgroup
	RecordTextPoke
	RecordAuxOutputHwID
)

var recordTypeNames = map[RecordType]string{
	RecordMmap:          "MMAP",
	RecordLost:          "LOST",
	RecordComm:          "COMM",
	RecordExit:          "EXIT",
	RecordThrottle:      "THROTTLE",
	RecordUnthrottle:    "UNTHROTTLE",
	RecordFork:          "FORK",
	RecordRead:          "READ",
	RecordSample:        "SAMPLE",
	RecordMmap2:         "MMAP2",
	RecordAux:           "AUX",
	RecordItraceStart:   "ITRACE_START",
	RecordLostSamples:   "LOST_SAMPLES",
	RecordSwitch:        "SWITCH",
	RecordSwitchCPUWide: "SWITCH_CPU_WIDE",
	RecordNamespaces:    "NAMESPACES",
	RecordKsymbol:       "KSYMBOL",
	RecordBpfEvent:      "BPF_EVENT",
	RecordCgroup:        "CGROUP",
	RecordTextPoke:      "TEXT_POKE",
	RecordAuxOutputHwID: "AUX_OUTPUT_HW_ID",
}

func (t RecordType) String() string {
	if name, ok := recordTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN(%d)", uint32(t))
}

// RecordHeader is the 8-byte frame preceding every record in the stream.
// Size is the total record length including the header itself.
type RecordHeader struct {
	Type RecordType
	Misc MiscFlags
	Size uint16
}

// RecordMetadata carries the information known about a record before its
// payload is decoded: the header fields and the sample_id trailer, when the
// event is configured with sample_id_all.
type RecordMetadata struct {
	Type     RecordType
	Misc     MiscFlags
	SampleID SampleID
}

// Record is the canonical union of decoded record payloads, returned by
// Parser.NextRecord. The concrete type is one of the record structs in this
// package; switch on Kind or type-assert to access the payload.
type Record interface {
	// Kind returns the record type tag of this payload.
	Kind() RecordType
}

// UnknownRecord holds the raw body of a record whose type this package does
// not know. Data excludes the header and the sample_id trailer.
type UnknownRecord struct {
	Type RecordType
	Data []byte
}

// Kind returns the raw record type.
func (r *UnknownRecord) Kind() RecordType { return r.Type }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *UnknownRecord) DecodeFrom(p *Parser) error {
	data, err := p.Rest()
	if err != nil {
		return err
	}

	r.Data = data

	return nil
}

// recordBuilder is the visitor behind Parser.NextRecord. It implements every
// record capability and stores the decoded payload as a Record.
type recordBuilder struct {
	record   Record
	metadata *RecordMetadata
}

func (b *recordBuilder) store(rec Record, md *RecordMetadata) error {
	b.record = rec
	b.metadata = md

	return nil
}

func (b *recordBuilder) VisitUnimplemented(md *RecordMetadata) error {
	// Every record kind has a visit method below, so this is unreachable
	// through dispatch.
	return b.store(nil, md)
}

func (b *recordBuilder) VisitMmap(rec *Mmap, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitLost(rec *Lost, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitComm(rec *Comm, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitExit(rec *Exit, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitThrottle(rec *Throttle, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitUnthrottle(rec *Unthrottle, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitFork(rec *Fork, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitRead(rec *Read, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitSample(rec *Sample, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitMmap2(rec *Mmap2, md *RecordMetadata) error { return b.store(rec, md) }
func (b *recordBuilder) VisitAux(rec *Aux, md *RecordMetadata) error     { return b.store(rec, md) }
func (b *recordBuilder) VisitItraceStart(rec *ItraceStart, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitLostSamples(rec *LostSamples, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitSwitch(rec *Switch, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitSwitchCPUWide(rec *SwitchCPUWide, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitNamespaces(rec *Namespaces, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitKsymbol(rec *Ksymbol, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitBpfEvent(rec *BpfEvent, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitCgroup(rec *Cgroup, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitTextPoke(rec *TextPoke, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitAuxOutputHwID(rec *AuxOutputHwID, md *RecordMetadata) error {
	return b.store(rec, md)
}
func (b *recordBuilder) VisitUnknown(rec *UnknownRecord, md *RecordMetadata) error {
	return b.store(rec, md)
}
