package pevent

// Throttle records the kernel throttling a counter that exceeded its rate
// limit.
type Throttle struct {
	Time     uint64
	ID       uint64
	StreamID uint64
}

// Kind returns RecordThrottle.
func (r *Throttle) Kind() RecordType { return RecordThrottle }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Throttle) DecodeFrom(p *Parser) error {
	var err error
	if r.Time, err = p.Uint64(); err != nil {
		return err
	}
	if r.ID, err = p.Uint64(); err != nil {
		return err
	}

	r.StreamID, err = p.Uint64()

	return err
}

// Unthrottle records the kernel lifting a throttle. Same layout as Throttle.
type Unthrottle struct {
	Throttle
}

// Kind returns RecordUnthrottle.
func (r *Unthrottle) Kind() RecordType { return RecordUnthrottle }
