package pevent

import (
	"fmt"
	"iter"
	"math"

	"github.com/arloliu/pevent/errs"
)

// ReadValue holds the counter values of a single (non-group) event. Which
// fields are present depends on the event's read_format; absent fields
// report ok == false.
type ReadValue struct {
	readFormat  ReadFormat
	value       uint64
	timeEnabled uint64
	timeRunning uint64
	id          uint64
	lost        uint64
}

// Value returns the value of the counter.
func (v *ReadValue) Value() uint64 {
	return v.value
}

// TimeEnabled returns how long the event was enabled, in nanoseconds.
func (v *ReadValue) TimeEnabled() (uint64, bool) {
	return v.timeEnabled, v.readFormat.Has(ReadFormatTotalTimeEnabled)
}

// TimeRunning returns how long the event was actually counting, in
// nanoseconds. This is less than TimeEnabled when the kernel multiplexed
// several counters onto the CPU.
func (v *ReadValue) TimeRunning() (uint64, bool) {
	return v.timeRunning, v.readFormat.Has(ReadFormatTotalTimeRunning)
}

// ID returns the kernel-assigned unique ID of the counter.
func (v *ReadValue) ID() (uint64, bool) {
	return v.id, v.readFormat.Has(ReadFormatID)
}

// Lost returns the number of lost samples of this event.
func (v *ReadValue) Lost() (uint64, bool) {
	return v.lost, v.readFormat.Has(ReadFormatLost)
}

// ReadGroup holds the counter values of every member of an event group.
type ReadGroup struct {
	readFormat  ReadFormat
	timeEnabled uint64
	timeRunning uint64
	data        []uint64
}

// Len returns the number of counters in the group.
func (g *ReadGroup) Len() int {
	return len(g.data) / g.readFormat.elementLen()
}

// TimeEnabled returns how long the group was enabled, in nanoseconds.
func (g *ReadGroup) TimeEnabled() (uint64, bool) {
	return g.timeEnabled, g.readFormat.Has(ReadFormatTotalTimeEnabled)
}

// TimeRunning returns how long the group was actually counting, in
// nanoseconds.
func (g *ReadGroup) TimeRunning() (uint64, bool) {
	return g.timeRunning, g.readFormat.Has(ReadFormatTotalTimeRunning)
}

// Entries iterates over the group's counters in wire order:
//
//	for entry := range group.Entries() {
//		fmt.Println(entry.Value())
//	}
func (g *ReadGroup) Entries() iter.Seq[GroupEntry] {
	return func(yield func(GroupEntry) bool) {
		elem := g.readFormat.elementLen()
		for i := 0; i+elem <= len(g.data); i += elem {
			if !yield(newGroupEntry(g.readFormat, g.data[i:i+elem])) {
				return
			}
		}
	}
}

// Entry returns the i-th counter of the group.
func (g *ReadGroup) Entry(i int) GroupEntry {
	elem := g.readFormat.elementLen()
	return newGroupEntry(g.readFormat, g.data[i*elem:(i+1)*elem])
}

// GroupEntry is one counter's slot in a ReadGroup.
type GroupEntry struct {
	readFormat ReadFormat
	value      uint64
	id         uint64
	lost       uint64
}

func newGroupEntry(rf ReadFormat, words []uint64) GroupEntry {
	e := GroupEntry{readFormat: rf, value: words[0]}

	next := 1
	if rf.Has(ReadFormatID) {
		e.id = words[next]
		next++
	}
	if rf.Has(ReadFormatLost) {
		e.lost = words[next]
	}

	return e
}

// Value returns the value of the counter.
func (e GroupEntry) Value() uint64 {
	return e.value
}

// ID returns the kernel-assigned unique ID of the counter.
func (e GroupEntry) ID() (uint64, bool) {
	return e.id, e.readFormat.Has(ReadFormatID)
}

// Lost returns the number of lost samples of this counter.
func (e GroupEntry) Lost() (uint64, bool) {
	return e.lost, e.readFormat.Has(ReadFormatLost)
}

// ReadData is the counter payload of READ and SAMPLE records. Exactly one of
// Single and Group is non-nil, selected by the event's read_format GROUP
// bit.
type ReadData struct {
	Single *ReadValue
	Group  *ReadGroup
}

// TimeEnabled returns how long the event was enabled, in nanoseconds.
func (d *ReadData) TimeEnabled() (uint64, bool) {
	if d.Group != nil {
		return d.Group.TimeEnabled()
	}

	return d.Single.TimeEnabled()
}

// TimeRunning returns how long the event was actually counting, in
// nanoseconds.
func (d *ReadData) TimeRunning() (uint64, bool) {
	if d.Group != nil {
		return d.Group.TimeRunning()
	}

	return d.Single.TimeRunning()
}

func checkReadFormat(rf ReadFormat) error {
	if rf&^readFormatKnown != 0 {
		return fmt.Errorf("read_format %#x contains unsupported flags: %w",
			uint64(rf), errs.ErrUnsupportedConfig)
	}

	return nil
}

func decodeReadValue(p *Parser) (*ReadValue, error) {
	rf := p.Config().ReadFormat()

	if rf.Has(ReadFormatGroup) {
		return nil, fmt.Errorf("single counter value with GROUP set in read_format: %w",
			errs.ErrUnsupportedConfig)
	}
	if err := checkReadFormat(rf); err != nil {
		return nil, err
	}

	v := &ReadValue{readFormat: rf}

	var err error
	if v.value, err = p.Uint64(); err != nil {
		return nil, err
	}
	if rf.Has(ReadFormatTotalTimeEnabled) {
		if v.timeEnabled, err = p.Uint64(); err != nil {
			return nil, err
		}
	}
	if rf.Has(ReadFormatTotalTimeRunning) {
		if v.timeRunning, err = p.Uint64(); err != nil {
			return nil, err
		}
	}
	if rf.Has(ReadFormatID) {
		if v.id, err = p.Uint64(); err != nil {
			return nil, err
		}
	}
	if rf.Has(ReadFormatLost) {
		if v.lost, err = p.Uint64(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func decodeReadGroup(p *Parser) (*ReadGroup, error) {
	rf := p.Config().ReadFormat()

	if !rf.Has(ReadFormatGroup) {
		return nil, fmt.Errorf("group counter values without GROUP set in read_format: %w",
			errs.ErrUnsupportedConfig)
	}
	if err := checkReadFormat(rf); err != nil {
		return nil, err
	}

	g := &ReadGroup{readFormat: rf}

	nr, err := p.Uint64()
	if err != nil {
		return nil, err
	}
	if rf.Has(ReadFormatTotalTimeEnabled) {
		if g.timeEnabled, err = p.Uint64(); err != nil {
			return nil, err
		}
	}
	if rf.Has(ReadFormatTotalTimeRunning) {
		if g.timeRunning, err = p.Uint64(); err != nil {
			return nil, err
		}
	}

	elem := uint64(rf.elementLen())
	if nr > math.MaxInt/elem {
		return nil, fmt.Errorf("group counter count %d overflows: %w", nr, errs.ErrInvalidRecord)
	}

	g.data, err = p.Uint64s(int(nr * elem))
	if err != nil {
		return nil, err
	}

	return g, nil
}

func decodeReadData(p *Parser) (ReadData, error) {
	if p.Config().ReadFormat().Has(ReadFormatGroup) {
		g, err := decodeReadGroup(p)
		return ReadData{Group: g}, err
	}

	v, err := decodeReadValue(p)

	return ReadData{Single: v}, err
}

// Read records the kernel reading a counter on its own, which happens when
// the event was opened with inherit_stat.
type Read struct {
	PID    uint32
	TID    uint32
	Values ReadData
}

// Kind returns RecordRead.
func (r *Read) Kind() RecordType { return RecordRead }

// DecodeFrom reads the record body from a record-scoped parser.
func (r *Read) DecodeFrom(p *Parser) error {
	var err error
	if r.PID, err = p.Uint32(); err != nil {
		return err
	}
	if r.TID, err = p.Uint32(); err != nil {
		return err
	}

	r.Values, err = decodeReadData(p)

	return err
}
