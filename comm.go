package pevent

// Comm records a change of a process's command name, emitted on exec and on
// prctl(PR_SET_NAME). The MiscCommExec flag distinguishes the two.
type Comm struct {
	PID  uint32
	TID  uint32
	Comm []byte
}

// Kind returns RecordComm.
func (r *Comm) Kind() RecordType { return RecordComm }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Comm) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}
	if r.TID, err = p.Uint32(); err != nil {
		return err
	}

	r.Comm, err = p.RestTrimNul()

	return err
}
