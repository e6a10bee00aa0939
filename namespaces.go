package pevent

// NamespaceEntry identifies one namespace of a task by device and inode, as
// reported by fstat on the /proc/<pid>/ns/ links.
type NamespaceEntry struct {
	Dev   uint64
	Inode uint64
}

// Namespaces records the set of namespaces a task belongs to, emitted when a
// task is created or changes namespaces. The entry order matches the
// kernel's NET_NS_INDEX through CGROUP_NS_INDEX layout.
type Namespaces struct {
	PID     uint32
	TID     uint32
	Entries []NamespaceEntry
}

// Kind returns RecordNamespaces.
func (r *Namespaces) Kind() RecordType { return RecordNamespaces }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Namespaces) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}
	if r.TID, err = p.Uint32(); err != nil {
		return err
	}

	nr, err := p.Uint64()
	if err != nil {
		return err
	}

	r.Entries, err = parseSlice(p, int(nr), parseNamespaceEntry)

	return err
}

func parseNamespaceEntry(p *Parser) (NamespaceEntry, error) {
	dev, err := p.Uint64()
	if err != nil {
		return NamespaceEntry{}, err
	}

	inode, err := p.Uint64()
	if err != nil {
		return NamespaceEntry{}, err
	}

	return NamespaceEntry{Dev: dev, Inode: inode}, nil
}
