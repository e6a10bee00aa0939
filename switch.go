package pevent

// Switch records a context switch in or out of the monitored task. The
// record body is empty; the direction is carried by MiscSwitchOut in the
// record's misc flags, with MiscSwitchOutPreempt marking preemption.
type Switch struct{}

// Kind returns RecordSwitch.
func (r *Switch) Kind() RecordType { return RecordSwitch }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Switch) DecodeFrom(_ *Parser) error { return nil }

// SwitchCPUWide is the CPU-wide variant of Switch emitted in system-wide
// tracing mode. NextPrevPID and NextPrevTID identify the task being switched
// in, or the task being switched away from when MiscSwitchOut is set.
type SwitchCPUWide struct {
	NextPrevPID uint32
	NextPrevTID uint32
}

// Kind returns RecordSwitchCPUWide.
func (r *SwitchCPUWide) Kind() RecordType { return RecordSwitchCPUWide }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *SwitchCPUWide) DecodeFrom(p *Parser) error {
	var err error
	if r.NextPrevPID, err = p.Uint32(); err != nil {
		return err
	}

	r.NextPrevTID, err = p.Uint32()

	return err
}
