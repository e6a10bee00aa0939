package pevent

// Visitor receives decoded records from Parser.ParseRecord.
//
// Visitor itself only requires VisitUnimplemented. A visitor opts in to each
// record kind by additionally implementing the corresponding single-method
// interface below; dispatch checks for the capability before decoding the
// payload, so records nobody listens for are skipped at zero decode cost.
//
//	type execTracker struct{}
//
//	func (execTracker) VisitUnimplemented(md *pevent.RecordMetadata) error { return nil }
//	func (execTracker) VisitComm(rec *pevent.Comm, md *pevent.RecordMetadata) error {
//		fmt.Printf("pid %d is now %q\n", rec.PID, rec.Comm)
//		return nil
//	}
type Visitor interface {
	// VisitUnimplemented is called for every record whose kind the visitor
	// does not handle. The payload is not decoded; only the metadata is
	// available.
	VisitUnimplemented(md *RecordMetadata) error
}

// MmapVisitor handles MMAP records. It also receives MMAP2 records, downcast
// with Mmap2.AsMmap, when the visitor does not implement Mmap2Visitor.
type MmapVisitor interface {
	Visitor
	VisitMmap(rec *Mmap, md *RecordMetadata) error
}

// LostVisitor handles LOST records.
type LostVisitor interface {
	Visitor
	VisitLost(rec *Lost, md *RecordMetadata) error
}

// CommVisitor handles COMM records.
type CommVisitor interface {
	Visitor
	VisitComm(rec *Comm, md *RecordMetadata) error
}

// ExitVisitor handles EXIT records.
type ExitVisitor interface {
	Visitor
	VisitExit(rec *Exit, md *RecordMetadata) error
}

// ThrottleVisitor handles THROTTLE records.
type ThrottleVisitor interface {
	Visitor
	VisitThrottle(rec *Throttle, md *RecordMetadata) error
}

// UnthrottleVisitor handles UNTHROTTLE records.
type UnthrottleVisitor interface {
	Visitor
	VisitUnthrottle(rec *Unthrottle, md *RecordMetadata) error
}

// ForkVisitor handles FORK records.
type ForkVisitor interface {
	Visitor
	VisitFork(rec *Fork, md *RecordMetadata) error
}

// ReadVisitor handles READ records.
type ReadVisitor interface {
	Visitor
	VisitRead(rec *Read, md *RecordMetadata) error
}

// SampleVisitor handles SAMPLE records.
type SampleVisitor interface {
	Visitor
	VisitSample(rec *Sample, md *RecordMetadata) error
}

// Mmap2Visitor handles MMAP2 records.
type Mmap2Visitor interface {
	Visitor
	VisitMmap2(rec *Mmap2, md *RecordMetadata) error
}

// AuxVisitor handles AUX records.
type AuxVisitor interface {
	Visitor
	VisitAux(rec *Aux, md *RecordMetadata) error
}

// ItraceStartVisitor handles ITRACE_START records.
type ItraceStartVisitor interface {
	Visitor
	VisitItraceStart(rec *ItraceStart, md *RecordMetadata) error
}

// LostSamplesVisitor handles LOST_SAMPLES records.
type LostSamplesVisitor interface {
	Visitor
	VisitLostSamples(rec *LostSamples, md *RecordMetadata) error
}

// SwitchVisitor handles SWITCH records.
type SwitchVisitor interface {
	Visitor
	VisitSwitch(rec *Switch, md *RecordMetadata) error
}

// SwitchCPUWideVisitor handles SWITCH_CPU_WIDE records.
type SwitchCPUWideVisitor interface {
	Visitor
	VisitSwitchCPUWide(rec *SwitchCPUWide, md *RecordMetadata) error
}

// NamespacesVisitor handles NAMESPACES records.
type NamespacesVisitor interface {
	Visitor
	VisitNamespaces(rec *Namespaces, md *RecordMetadata) error
}

// KsymbolVisitor handles KSYMBOL records.
type KsymbolVisitor interface {
	Visitor
	VisitKsymbol(rec *Ksymbol, md *RecordMetadata) error
}

// BpfEventVisitor handles BPF_EVENT records.
type BpfEventVisitor interface {
	Visitor
	VisitBpfEvent(rec *BpfEvent, md *RecordMetadata) error
}

// CgroupVisitor handles CGROUP records.
type CgroupVisitor interface {
	Visitor
	VisitCgroup(rec *Cgroup, md *RecordMetadata) error
}

// TextPokeVisitor handles TEXT_POKE records.
type TextPokeVisitor interface {
	Visitor
	VisitTextPoke(rec *TextPoke, md *RecordMetadata) error
}

// AuxOutputHwIDVisitor handles AUX_OUTPUT_HW_ID records.
type AuxOutputHwIDVisitor interface {
	Visitor
	VisitAuxOutputHwID(rec *AuxOutputHwID, md *RecordMetadata) error
}

// UnknownVisitor handles records of types this package does not know. The
// raw body is provided without further decoding.
type UnknownVisitor interface {
	Visitor
	VisitUnknown(rec *UnknownRecord, md *RecordMetadata) error
}

// dispatchRecord decodes the record body in p and routes it to the matching
// visitor capability. p is scoped to exactly the record body; any bytes the
// decoder leaves behind were already consumed from the outer stream.
func dispatchRecord(p *Parser, md *RecordMetadata, v Visitor) error {
	switch md.Type {
	case RecordMmap:
		if vv, ok := v.(MmapVisitor); ok {
			rec := new(Mmap)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitMmap(rec, md)
		}
	case RecordLost:
		if vv, ok := v.(LostVisitor); ok {
			rec := new(Lost)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitLost(rec, md)
		}
	case RecordComm:
		if vv, ok := v.(CommVisitor); ok {
			rec := new(Comm)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitComm(rec, md)
		}
	case RecordExit:
		if vv, ok := v.(ExitVisitor); ok {
			rec := new(Exit)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitExit(rec, md)
		}
	case RecordThrottle:
		if vv, ok := v.(ThrottleVisitor); ok {
			rec := new(Throttle)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitThrottle(rec, md)
		}
	case RecordUnthrottle:
		if vv, ok := v.(UnthrottleVisitor); ok {
			rec := new(Unthrottle)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitUnthrottle(rec, md)
		}
	case RecordFork:
		if vv, ok := v.(ForkVisitor); ok {
			rec := new(Fork)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitFork(rec, md)
		}
	case RecordRead:
		if vv, ok := v.(ReadVisitor); ok {
			rec := new(Read)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitRead(rec, md)
		}
	case RecordSample:
		if vv, ok := v.(SampleVisitor); ok {
			rec := new(Sample)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitSample(rec, md)
		}
	case RecordMmap2:
		switch vv := v.(type) {
		case Mmap2Visitor:
			rec := new(Mmap2)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitMmap2(rec, md)
		case MmapVisitor:
			rec := new(Mmap2)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitMmap(rec.AsMmap(), md)
		}
	case RecordAux:
		if vv, ok := v.(AuxVisitor); ok {
			rec := new(Aux)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitAux(rec, md)
		}
	case RecordItraceStart:
		if vv, ok := v.(ItraceStartVisitor); ok {
			rec := new(ItraceStart)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitItraceStart(rec, md)
		}
	case RecordLostSamples:
		if vv, ok := v.(LostSamplesVisitor); ok {
			rec := new(LostSamples)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitLostSamples(rec, md)
		}
	case RecordSwitch:
		if vv, ok := v.(SwitchVisitor); ok {
			rec := new(Switch)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitSwitch(rec, md)
		}
	case RecordSwitchCPUWide:
		if vv, ok := v.(SwitchCPUWideVisitor); ok {
			rec := new(SwitchCPUWide)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitSwitchCPUWide(rec, md)
		}
	case RecordNamespaces:
		if vv, ok := v.(NamespacesVisitor); ok {
			rec := new(Namespaces)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitNamespaces(rec, md)
		}
	case RecordKsymbol:
		if vv, ok := v.(KsymbolVisitor); ok {
			rec := new(Ksymbol)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitKsymbol(rec, md)
		}
	case RecordBpfEvent:
		if vv, ok := v.(BpfEventVisitor); ok {
			rec := new(BpfEvent)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitBpfEvent(rec, md)
		}
	case RecordCgroup:
		if vv, ok := v.(CgroupVisitor); ok {
			rec := new(Cgroup)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitCgroup(rec, md)
		}
	case RecordTextPoke:
		if vv, ok := v.(TextPokeVisitor); ok {
			rec := new(TextPoke)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitTextPoke(rec, md)
		}
	case RecordAuxOutputHwID:
		if vv, ok := v.(AuxOutputHwIDVisitor); ok {
			rec := new(AuxOutputHwID)
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitAuxOutputHwID(rec, md)
		}
	default:
		if vv, ok := v.(UnknownVisitor); ok {
			rec := &UnknownRecord{Type: md.Type}
			if err := rec.DecodeFrom(p); err != nil {
				return err
			}

			return vv.VisitUnknown(rec, md)
		}
	}

	return v.VisitUnimplemented(md)
}
