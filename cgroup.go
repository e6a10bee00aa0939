package pevent

// Cgroup records the creation of a new cgroup, tying the cgroup ID used in
// SAMPLE records to its path below the cgroupfs mount point.
type Cgroup struct {
	ID   uint64
	Path []byte
}

// Kind returns RecordCgroup.
func (r *Cgroup) Kind() RecordType { return RecordCgroup }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Cgroup) DecodeFrom(p *Parser) error {
	var err error
	if r.ID, err = p.Uint64(); err != nil {
		return err
	}

	r.Path, err = p.RestTrimNul()

	return err
}
