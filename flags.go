package pevent

import "math/bits"

// SampleFormat is the perf_event_attr sample_type bitmask. It selects which
// optional fields are present in SAMPLE records and in the sample_id trailer
// appended to other records.
//
// The bit values match the kernel's PERF_SAMPLE_* constants. Unknown bits are
// preserved as-is; decoding only acts on the bits listed here.
type SampleFormat uint64

const (
	SampleFormatIP SampleFormat = 1 << iota
	SampleFormatTID
	SampleFormatTime
	SampleFormatAddr
	SampleFormatRead
	SampleFormatCallchain
	SampleFormatID
	SampleFormatCPU
	SampleFormatPeriod
	SampleFormatStreamID
	SampleFormatRaw
	SampleFormatBranchStack
	SampleFormatRegsUser
	SampleFormatStackUser
	SampleFormatWeight
	SampleFormatDataSrc
	SampleFormatIdentifier
	SampleFormatTransaction
	SampleFormatRegsIntr
	SampleFormatPhysAddr
	SampleFormatAux
	SampleFormatCgroup
	SampleFormatDataPageSize
	SampleFormatCodePageSize
	SampleFormatWeightStruct
)

// Has reports whether all bits in flags are set in f.
func (f SampleFormat) Has(flags SampleFormat) bool {
	return f&flags == flags
}

// ReadFormat is the perf_event_attr read_format bitmask. It controls the
// layout of counter values in READ records and in SAMPLE records with
// SampleFormatRead set.
//
// The bit values match the kernel's PERF_FORMAT_* constants.
type ReadFormat uint64

const (
	ReadFormatTotalTimeEnabled ReadFormat = 1 << iota
	ReadFormatTotalTimeRunning
	ReadFormatID
	ReadFormatGroup
	ReadFormatLost

	readFormatKnown = ReadFormatTotalTimeEnabled | ReadFormatTotalTimeRunning |
		ReadFormatID | ReadFormatGroup | ReadFormatLost
)

// Has reports whether all bits in flags are set in f.
func (f ReadFormat) Has(flags ReadFormat) bool {
	return f&flags == flags
}

// elementLen returns the number of u64 words each group entry occupies.
func (f ReadFormat) elementLen() int {
	return 1 + bits.OnesCount64(uint64(f&(ReadFormatID|ReadFormatLost)))
}

// BranchSampleFormat is the perf_event_attr branch_sample_type bitmask,
// matching the kernel's PERF_SAMPLE_BRANCH_* constants.
type BranchSampleFormat uint64

const (
	BranchSampleUser BranchSampleFormat = 1 << iota
	BranchSampleKernel
	BranchSampleHV
	BranchSampleAny
	BranchSampleAnyCall
	BranchSampleAnyReturn
	BranchSampleIndCall
	BranchSampleAbortTx
	BranchSampleInTx
	BranchSampleNoTx
	BranchSampleCond
	BranchSampleCallStack
	BranchSampleIndJump
	BranchSampleCall
	BranchSampleNoFlags
	BranchSampleNoCycles
	BranchSampleTypeSave
	BranchSampleHWIndex
)

// Has reports whether all bits in flags are set in f.
func (f BranchSampleFormat) Has(flags BranchSampleFormat) bool {
	return f&flags == flags
}

// MiscFlags is the misc field of a record header. The low three bits encode
// the CPU mode; the upper bits carry per-record-type flags that share values,
// matching the kernel's PERF_RECORD_MISC_* constants.
type MiscFlags uint16

const (
	MiscCPUModeMask MiscFlags = 7

	MiscProcMapParseTimeout MiscFlags = 1 << 12

	// Bit 13 is shared between record types.
	MiscMmapData  MiscFlags = 1 << 13
	MiscCommExec  MiscFlags = 1 << 13
	MiscForkExec  MiscFlags = 1 << 13
	MiscSwitchOut MiscFlags = 1 << 13

	// Bit 14 is shared between record types.
	MiscExactIP          MiscFlags = 1 << 14
	MiscSwitchOutPreempt MiscFlags = 1 << 14
	MiscMmapBuildID      MiscFlags = 1 << 14

	MiscExtReserved MiscFlags = 1 << 15
)

// Has reports whether all bits in flags are set in f.
func (f MiscFlags) Has(flags MiscFlags) bool {
	return f&flags == flags
}

// CPUMode returns the CPU mode bits of the misc field.
func (f MiscFlags) CPUMode() CPUMode {
	return CPUMode(f & MiscCPUModeMask)
}

// CPUMode describes the execution mode of the CPU when an event was
// recorded, matching the kernel's PERF_RECORD_MISC_CPUMODE values.
type CPUMode uint8

const (
	CPUModeUnknown CPUMode = iota
	CPUModeKernel
	CPUModeUser
	CPUModeHypervisor
	CPUModeGuestKernel
	CPUModeGuestUser
)

func (m CPUMode) String() string {
	switch m {
	case CPUModeKernel:
		return "kernel"
	case CPUModeUser:
		return "user"
	case CPUModeHypervisor:
		return "hypervisor"
	case CPUModeGuestKernel:
		return "guest-kernel"
	case CPUModeGuestUser:
		return "guest-user"
	default:
		return "unknown"
	}
}
