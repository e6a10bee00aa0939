package pevent

// Exit records a process exit.
type Exit struct {
	PID  uint32
	PPID uint32
	TID  uint32
	PTID uint32
	Time uint64
}

// Kind returns RecordExit.
func (r *Exit) Kind() RecordType { return RecordExit }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Exit) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}
	if r.PPID, err = p.Uint32(); err != nil {
		return err
	}
	if r.TID, err = p.Uint32(); err != nil {
		return err
	}
	if r.PTID, err = p.Uint32(); err != nil {
		return err
	}

	r.Time, err = p.Uint64()

	return err
}

// Fork records a process fork. It has the same wire layout as Exit, with
// PID/TID identifying the new task and PPID/PTID its parent.
type Fork struct {
	Exit
}

// Kind returns RecordFork.
func (r *Fork) Kind() RecordType { return RecordFork }

// ItraceStart records the start of instruction tracing for a task.
type ItraceStart struct {
	PID uint32
	TID uint32
}

// Kind returns RecordItraceStart.
func (r *ItraceStart) Kind() RecordType { return RecordItraceStart }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *ItraceStart) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}

	r.TID, err = p.Uint32()

	return err
}
