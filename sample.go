package pevent

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/pevent/errs"
)

// RegsABI is the register set ABI reported with sampled registers, matching
// PERF_SAMPLE_REGS_ABI_*.
type RegsABI uint64

const (
	RegsABINone RegsABI = iota
	RegsABI32
	RegsABI64
)

// Registers is a sampled register set. Mask is the configured selection
// mask; Regs holds one value per set mask bit, in ascending bit order.
type Registers struct {
	ABI  RegsABI
	Mask uint64
	Regs []uint64
}

func decodeRegisters(p *Parser, mask uint64) (Registers, error) {
	abi, err := p.Uint64()
	if err != nil {
		return Registers{}, err
	}

	regs, err := p.Uint64s(bits.OnesCount64(mask))
	if err != nil {
		return Registers{}, err
	}

	return Registers{ABI: RegsABI(abi), Mask: mask, Regs: regs}, nil
}

// Presence bits for Sample fields.
const (
	smpIP uint32 = 1 << iota
	smpTID
	smpTime
	smpAddr
	smpID
	smpStreamID
	smpCPU
	smpPeriod
	smpValues
	smpCallchain
	smpRaw
	smpBranch
	smpBranchHWIndex
	smpRegsUser
	smpStackUser
	smpWeight
	smpDataSrc
	smpTxn
	smpRegsIntr
	smpPhysAddr
	smpAux
	smpDataPageSize
	smpCodePageSize
)

// Sample is a SAMPLE record: a snapshot taken when a counter overflowed its
// sampling period.
//
// Every field is optional; which ones are present is decided by the event's
// sample_type and the accessors report ok == false for the rest. Slices may
// alias the input buffer when decoding from an in-memory capture.
type Sample struct {
	set          uint32
	ip           uint64
	pid          uint32
	tid          uint32
	time         uint64
	addr         uint64
	id           uint64
	streamID     uint64
	cpu          uint32
	period       uint64
	values       ReadData
	callchain    []uint64
	raw          []byte
	branchStack  []BranchEntry
	branchHW     uint64
	regsUser     Registers
	stackUser    []byte
	weight       uint64
	dataSrc      DataSource
	transaction  Txn
	regsIntr     Registers
	physAddr     uint64
	aux          []byte
	dataPageSize uint64
	codePageSize uint64
}

// Kind returns RecordSample.
func (s *Sample) Kind() RecordType { return RecordSample }

func (s *Sample) has(bit uint32) bool { return s.set&bit != 0 }

// IP returns the sampled instruction pointer.
func (s *Sample) IP() (uint64, bool) { return s.ip, s.has(smpIP) }

// PID returns the sampled process ID.
func (s *Sample) PID() (uint32, bool) { return s.pid, s.has(smpTID) }

// TID returns the sampled thread ID.
func (s *Sample) TID() (uint32, bool) { return s.tid, s.has(smpTID) }

// Time returns the timestamp of the sample.
func (s *Sample) Time() (uint64, bool) { return s.time, s.has(smpTime) }

// Addr returns the sampled memory address.
func (s *Sample) Addr() (uint64, bool) { return s.addr, s.has(smpAddr) }

// ID returns the kernel-assigned ID of the counter group leader.
func (s *Sample) ID() (uint64, bool) { return s.id, s.has(smpID) }

// StreamID returns the kernel-assigned ID of the sampled counter.
func (s *Sample) StreamID() (uint64, bool) { return s.streamID, s.has(smpStreamID) }

// CPU returns the CPU the sample was taken on.
func (s *Sample) CPU() (uint32, bool) { return s.cpu, s.has(smpCPU) }

// Period returns the sampling period in effect.
func (s *Sample) Period() (uint64, bool) { return s.period, s.has(smpPeriod) }

// Values returns the counter values read with the sample.
func (s *Sample) Values() (ReadData, bool) { return s.values, s.has(smpValues) }

// Callchain returns the sampled call stack, outermost frame last.
func (s *Sample) Callchain() ([]uint64, bool) { return s.callchain, s.has(smpCallchain) }

// Raw returns the raw perf_event payload, such as tracepoint data. Its
// format is event-specific.
func (s *Sample) Raw() ([]byte, bool) { return s.raw, s.has(smpRaw) }

// BranchStack returns the sampled last-branch records.
func (s *Sample) BranchStack() ([]BranchEntry, bool) { return s.branchStack, s.has(smpBranch) }

// BranchHWIndex returns the hardware index of the branch stack. Only present
// when the event was configured with the branch hardware index.
func (s *Sample) BranchHWIndex() (uint64, bool) { return s.branchHW, s.has(smpBranchHWIndex) }

// RegsUser returns the sampled user-space registers.
func (s *Sample) RegsUser() (Registers, bool) { return s.regsUser, s.has(smpRegsUser) }

// StackUser returns the sampled user stack, truncated to the bytes the
// kernel actually captured.
func (s *Sample) StackUser() ([]byte, bool) { return s.stackUser, s.has(smpStackUser) }

// Weight returns the event-specific sample weight.
func (s *Sample) Weight() (uint64, bool) { return s.weight, s.has(smpWeight) }

// DataSrc returns the memory hierarchy origin of the sampled access.
func (s *Sample) DataSrc() (DataSource, bool) { return s.dataSrc, s.has(smpDataSrc) }

// Transaction returns the memory transaction state.
func (s *Sample) Transaction() (Txn, bool) { return s.transaction, s.has(smpTxn) }

// RegsIntr returns the registers sampled at interrupt time.
func (s *Sample) RegsIntr() (Registers, bool) { return s.regsIntr, s.has(smpRegsIntr) }

// PhysAddr returns the physical address of the sampled access.
func (s *Sample) PhysAddr() (uint64, bool) { return s.physAddr, s.has(smpPhysAddr) }

// Aux returns the AUX area data snapshotted with the sample.
func (s *Sample) Aux() ([]byte, bool) { return s.aux, s.has(smpAux) }

// DataPageSize returns the page size backing the sampled data address.
func (s *Sample) DataPageSize() (uint64, bool) { return s.dataPageSize, s.has(smpDataPageSize) }

// CodePageSize returns the page size backing the sampled instruction
// pointer.
func (s *Sample) CodePageSize() (uint64, bool) { return s.codePageSize, s.has(smpCodePageSize) }

// DecodeFrom reads the record body from a record-scoped parser. Fields are
// decoded in the fixed wire order dictated by the sample_type bits; the
// out-of-band register masks and branch hardware index flag come from the
// parser's config.
func (s *Sample) DecodeFrom(p *Parser) error {
	cfg := p.Config()
	sf := cfg.SampleFormat()

	// IDENTIFIER duplicates the ID field at a config-independent position.
	// The leading occurrence wins; a later ID field is consumed but does
	// not overwrite it.
	if sf.Has(SampleFormatIdentifier) {
		id, err := p.Uint64()
		if err != nil {
			return err
		}

		s.id = id
		s.set |= smpID
	}

	if sf.Has(SampleFormatIP) {
		ip, err := p.Uint64()
		if err != nil {
			return err
		}

		s.ip = ip
		s.set |= smpIP
	}

	if sf.Has(SampleFormatTID) {
		pid, err := p.Uint32()
		if err != nil {
			return err
		}

		tid, err := p.Uint32()
		if err != nil {
			return err
		}

		s.pid, s.tid = pid, tid
		s.set |= smpTID
	}

	if sf.Has(SampleFormatTime) {
		t, err := p.Uint64()
		if err != nil {
			return err
		}

		s.time = t
		s.set |= smpTime
	}

	if sf.Has(SampleFormatAddr) {
		addr, err := p.Uint64()
		if err != nil {
			return err
		}

		s.addr = addr
		s.set |= smpAddr
	}

	if sf.Has(SampleFormatID) {
		id, err := p.Uint64()
		if err != nil {
			return err
		}

		if s.set&smpID == 0 {
			s.id = id
			s.set |= smpID
		}
	}

	if sf.Has(SampleFormatStreamID) {
		sid, err := p.Uint64()
		if err != nil {
			return err
		}

		s.streamID = sid
		s.set |= smpStreamID
	}

	if sf.Has(SampleFormatCPU) {
		cpu, err := p.Uint32()
		if err != nil {
			return err
		}

		if _, err := p.Uint32(); err != nil { // reserved
			return err
		}

		s.cpu = cpu
		s.set |= smpCPU
	}

	if sf.Has(SampleFormatPeriod) {
		period, err := p.Uint64()
		if err != nil {
			return err
		}

		s.period = period
		s.set |= smpPeriod
	}

	if sf.Has(SampleFormatRead) {
		values, err := decodeReadData(p)
		if err != nil {
			return err
		}

		s.values = values
		s.set |= smpValues
	}

	if sf.Has(SampleFormatCallchain) {
		nr, err := p.Uint64()
		if err != nil {
			return err
		}

		if s.callchain, err = p.Uint64s(int(nr)); err != nil {
			return err
		}

		s.set |= smpCallchain
	}

	if sf.Has(SampleFormatRaw) {
		size, err := p.Uint64()
		if err != nil {
			return err
		}

		if s.raw, err = p.Bytes(int(size)); err != nil {
			return err
		}

		s.set |= smpRaw
	}

	if sf.Has(SampleFormatBranchStack) {
		if err := s.decodeBranchStack(p, cfg.BranchHWIndex()); err != nil {
			return err
		}
	}

	if sf.Has(SampleFormatRegsUser) {
		regs, err := decodeRegisters(p, cfg.RegsUser())
		if err != nil {
			return err
		}

		s.regsUser = regs
		s.set |= smpRegsUser
	}

	if sf.Has(SampleFormatStackUser) {
		if err := s.decodeStackUser(p); err != nil {
			return err
		}
	}

	if sf.Has(SampleFormatWeight) {
		weight, err := p.Uint64()
		if err != nil {
			return err
		}

		s.weight = weight
		s.set |= smpWeight
	}

	if sf.Has(SampleFormatDataSrc) {
		src, err := p.Uint64()
		if err != nil {
			return err
		}

		s.dataSrc = DataSource(src)
		s.set |= smpDataSrc
	}

	if sf.Has(SampleFormatTransaction) {
		txn, err := p.Uint64()
		if err != nil {
			return err
		}

		s.transaction = Txn(txn)
		s.set |= smpTxn
	}

	if sf.Has(SampleFormatRegsIntr) {
		regs, err := decodeRegisters(p, cfg.RegsIntr())
		if err != nil {
			return err
		}

		s.regsIntr = regs
		s.set |= smpRegsIntr
	}

	if sf.Has(SampleFormatPhysAddr) {
		addr, err := p.Uint64()
		if err != nil {
			return err
		}

		s.physAddr = addr
		s.set |= smpPhysAddr
	}

	if sf.Has(SampleFormatAux) {
		size, err := p.Uint64()
		if err != nil {
			return err
		}

		if s.aux, err = p.Bytes(int(size)); err != nil {
			return err
		}

		s.set |= smpAux
	}

	if sf.Has(SampleFormatDataPageSize) {
		size, err := p.Uint64()
		if err != nil {
			return err
		}

		s.dataPageSize = size
		s.set |= smpDataPageSize
	}

	if sf.Has(SampleFormatCodePageSize) {
		size, err := p.Uint64()
		if err != nil {
			return err
		}

		s.codePageSize = size
		s.set |= smpCodePageSize
	}

	return nil
}

func (s *Sample) decodeBranchStack(p *Parser, hwIndex bool) error {
	nr, err := p.Uint64()
	if err != nil {
		return err
	}

	if hwIndex {
		idx, err := p.Uint64()
		if err != nil {
			return err
		}

		s.branchHW = idx
		s.set |= smpBranchHWIndex
	}

	entries, err := parseSlice(p, int(nr), parseBranchEntry)
	if err != nil {
		return err
	}

	s.branchStack = entries
	s.set |= smpBranch

	return nil
}

func parseBranchEntry(p *Parser) (BranchEntry, error) {
	from, err := p.Uint64()
	if err != nil {
		return BranchEntry{}, err
	}

	to, err := p.Uint64()
	if err != nil {
		return BranchEntry{}, err
	}

	flags, err := p.Uint64()
	if err != nil {
		return BranchEntry{}, err
	}

	return BranchEntry{FromAddr: from, ToAddr: to, flags: flags}, nil
}

func (s *Sample) decodeStackUser(p *Parser) error {
	size, err := p.Uint64()
	if err != nil {
		return err
	}

	data, err := p.Bytes(int(size))
	if err != nil {
		return err
	}

	dynSize, err := p.Uint64()
	if err != nil {
		return err
	}

	if dynSize > uint64(len(data)) {
		return fmt.Errorf("stack dyn_size %d exceeds the %d captured bytes: %w",
			dynSize, len(data), errs.ErrInvalidRecord)
	}

	s.stackUser = data[:dynSize]
	s.set |= smpStackUser

	return nil
}
