package pevent

// TextPoke records a modification of kernel text, such as a static key being
// flipped. OldBytes and NewBytes are the instruction bytes at Addr before
// and after the change.
type TextPoke struct {
	Addr     uint64
	OldBytes []byte
	NewBytes []byte
}

// Kind returns RecordTextPoke.
func (r *TextPoke) Kind() RecordType { return RecordTextPoke }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *TextPoke) DecodeFrom(p *Parser) error {
	var err error
	if r.Addr, err = p.Uint64(); err != nil {
		return err
	}

	oldLen, err := p.Uint16()
	if err != nil {
		return err
	}

	newLen, err := p.Uint16()
	if err != nil {
		return err
	}

	// The byte payload is padded so the whole record stays a multiple of
	// eight bytes: 12 fixed bytes, so the payload is 4 (mod 8).
	fullLen := roundUpMod(int(oldLen)+int(newLen), 4, 8)
	data, err := p.Bytes(fullLen)
	if err != nil {
		return err
	}

	r.OldBytes = data[:oldLen]
	r.NewBytes = data[oldLen : int(oldLen)+int(newLen)]

	return nil
}

// roundUpMod rounds v up to the smallest value >= v with v == k (mod m).
func roundUpMod(v, k, m int) int {
	vm := v % m
	if vm <= k {
		return v + k - vm
	}

	return v + k + m - vm
}
