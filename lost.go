package pevent

// Lost records events dropped because the ring buffer was full. ID names the
// counter whose events were lost, Lost counts them.
type Lost struct {
	ID   uint64
	Lost uint64
}

// Kind returns RecordLost.
func (r *Lost) Kind() RecordType { return RecordLost }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Lost) DecodeFrom(p *Parser) error {
	var err error
	if r.ID, err = p.Uint64(); err != nil {
		return err
	}

	r.Lost, err = p.Uint64()

	return err
}

// LostSamples counts samples dropped by hardware sampling, such as Intel
// PEBS, as opposed to ring buffer overflow.
type LostSamples struct {
	Lost uint64
}

// Kind returns RecordLostSamples.
func (r *LostSamples) Kind() RecordType { return RecordLostSamples }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *LostSamples) DecodeFrom(p *Parser) error {
	var err error
	r.Lost, err = p.Uint64()

	return err
}
