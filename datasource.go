package pevent

// DataSource describes where in the memory hierarchy a sampled access was
// served from. It wraps the kernel's perf_mem_data_src bitfield word;
// accessors extract the individual fields.
type DataSource uint64

// Field offsets and widths of perf_mem_data_src.
const (
	memOpShift     = 0
	memOpBits      = 5
	memLvlShift    = 5
	memLvlBits     = 14
	memSnoopShift  = 19
	memSnoopBits   = 5
	memLockShift   = 24
	memLockBits    = 2
	memDtlbShift   = 26
	memDtlbBits    = 7
	memLvlNumShift = 33
	memLvlNumBits  = 4
	memRemoteShift = 37
	memSnoopXShift = 38
	memSnoopXBits  = 2
	memBlkShift    = 40
	memBlkBits     = 3
	memHopsShift   = 43
	memHopsBits    = 3
)

func (d DataSource) field(shift, width uint) uint64 {
	return (uint64(d) >> shift) & (1<<width - 1)
}

// Op returns the memory operation type.
func (d DataSource) Op() MemOp { return MemOp(d.field(memOpShift, memOpBits)) }

// Level returns the memory hierarchy level hit or missed.
func (d DataSource) Level() MemLevel { return MemLevel(d.field(memLvlShift, memLvlBits)) }

// Snoop returns the snoop mode.
func (d DataSource) Snoop() MemSnoop { return MemSnoop(d.field(memSnoopShift, memSnoopBits)) }

// Lock reports whether the access was a locked instruction.
func (d DataSource) Lock() MemLock { return MemLock(d.field(memLockShift, memLockBits)) }

// DTLB returns the TLB access outcome.
func (d DataSource) DTLB() MemDtlb { return MemDtlb(d.field(memDtlbShift, memDtlbBits)) }

// LevelNum returns the numeric memory hierarchy level.
func (d DataSource) LevelNum() MemLevelNum {
	return MemLevelNum(d.field(memLvlNumShift, memLvlNumBits))
}

// Remote reports whether the access crossed to a remote node.
func (d DataSource) Remote() bool { return d.field(memRemoteShift, 1) != 0 }

// SnoopX returns the extended snoop mode bits.
func (d DataSource) SnoopX() MemSnoopX { return MemSnoopX(d.field(memSnoopXShift, memSnoopXBits)) }

// Blk returns the access blocked reason.
func (d DataSource) Blk() MemBlk { return MemBlk(d.field(memBlkShift, memBlkBits)) }

// Hops returns the number of hops to the serving node.
func (d DataSource) Hops() MemHops { return MemHops(d.field(memHopsShift, memHopsBits)) }

// MemOp is the memory operation bitmask, matching PERF_MEM_OP_*.
type MemOp uint8

const (
	MemOpNA MemOp = 1 << iota
	MemOpLoad
	MemOpStore
	MemOpPfetch
	MemOpExec
)

// MemLevel is the memory hierarchy level bitmask, matching PERF_MEM_LVL_*.
type MemLevel uint16

const (
	MemLevelNA MemLevel = 1 << iota
	MemLevelHit
	MemLevelMiss
	MemLevelL1
	MemLevelLFB
	MemLevelL2
	MemLevelL3
	MemLevelLocRAM
	MemLevelRemRAM1
	MemLevelRemRAM2
	MemLevelRemCce1
	MemLevelRemCce2
	MemLevelIO
	MemLevelUnc
)

// MemSnoop is the snoop mode bitmask, matching PERF_MEM_SNOOP_*.
type MemSnoop uint8

const (
	MemSnoopNA MemSnoop = 1 << iota
	MemSnoopNone
	MemSnoopHit
	MemSnoopMiss
	MemSnoopHitM
)

// MemSnoopX is the extended snoop mode bitmask, matching PERF_MEM_SNOOPX_*.
type MemSnoopX uint8

const (
	MemSnoopXFwd MemSnoopX = 1 << iota
	MemSnoopXPeer
)

// MemLock is the lock bitmask, matching PERF_MEM_LOCK_*.
type MemLock uint8

const (
	MemLockNA MemLock = 1 << iota
	MemLockLocked
)

// MemDtlb is the TLB access bitmask, matching PERF_MEM_TLB_*.
type MemDtlb uint8

const (
	MemDtlbNA MemDtlb = 1 << iota
	MemDtlbHit
	MemDtlbMiss
	MemDtlbL1
	MemDtlbL2
	MemDtlbWk
	MemDtlbOS
)

// MemLevelNum is the numeric hierarchy level, matching PERF_MEM_LVLNUM_*.
type MemLevelNum uint8

const (
	MemLevelNumL1       MemLevelNum = 0x01
	MemLevelNumL2       MemLevelNum = 0x02
	MemLevelNumL3       MemLevelNum = 0x03
	MemLevelNumL4       MemLevelNum = 0x04
	MemLevelNumUnc      MemLevelNum = 0x08
	MemLevelNumCxl      MemLevelNum = 0x09
	MemLevelNumIO       MemLevelNum = 0x0A
	MemLevelNumAnyCache MemLevelNum = 0x0B
	MemLevelNumLFB      MemLevelNum = 0x0C
	MemLevelNumRAM      MemLevelNum = 0x0D
	MemLevelNumPmem     MemLevelNum = 0x0E
	MemLevelNumNA       MemLevelNum = 0x0F
)

// MemBlk is the access blocked bitmask, matching PERF_MEM_BLK_*.
type MemBlk uint8

const (
	MemBlkNA MemBlk = 1 << iota
	MemBlkData
	MemBlkAddr
)

// MemHops is the hop level, matching PERF_MEM_HOPS_*.
type MemHops uint8

const (
	MemHops0 MemHops = iota + 1
	MemHops1
	MemHops2
	MemHops3
)

// Txn describes a memory transaction when a sample aborted one, matching
// the kernel's PERF_TXN_* layout. The low bits are flags; the upper 32 bits
// carry the user-supplied abort code.
type Txn uint64

const (
	TxnElision Txn = 1 << iota
	TxnTransaction
	TxnSync
	TxnAsync
	TxnRetry
	TxnConflict
	TxnCapacityWrite
	TxnCapacityRead

	txnAbortShift = 32
)

// Has reports whether all bits in flags are set in t.
func (t Txn) Has(flags Txn) bool {
	return t&flags == flags
}

// AbortCode returns the user-supplied transaction abort code.
func (t Txn) AbortCode() uint32 {
	return uint32(uint64(t) >> txnAbortShift)
}

// BranchEntry is one taken branch in a sample's branch stack. The layout
// matches the kernel's perf_branch_entry, which allows branch stacks to be
// reinterpreted in place on native-endian input.
type BranchEntry struct {
	FromAddr uint64
	ToAddr   uint64
	flags    uint64
}

// Branch entry flag field offsets.
const (
	branchMispredShift   = 0
	branchPredictedShift = 1
	branchInTxShift      = 2
	branchAbortShift     = 3
	branchCyclesShift    = 4
	branchCyclesBits     = 16
	branchTypeShift      = 20
	branchTypeBits       = 4
)

// Mispred reports whether the branch was mispredicted.
func (e BranchEntry) Mispred() bool { return e.flags>>branchMispredShift&1 != 0 }

// Predicted reports whether the branch was predicted correctly.
func (e BranchEntry) Predicted() bool { return e.flags>>branchPredictedShift&1 != 0 }

// InTx reports whether the branch occurred inside a transaction.
func (e BranchEntry) InTx() bool { return e.flags>>branchInTxShift&1 != 0 }

// Abort reports whether the branch was due to a transaction abort.
func (e BranchEntry) Abort() bool { return e.flags>>branchAbortShift&1 != 0 }

// Cycles returns the cycle count since the last branch.
func (e BranchEntry) Cycles() uint16 {
	return uint16(e.flags >> branchCyclesShift & (1<<branchCyclesBits - 1))
}

// Type returns the branch type.
func (e BranchEntry) Type() BranchType {
	return BranchType(e.flags >> branchTypeShift & (1<<branchTypeBits - 1))
}

// BranchType classifies a branch in the branch stack, matching PERF_BR_*.
type BranchType uint8

const (
	BranchTypeUnknown BranchType = iota
	BranchTypeCond
	BranchTypeUncond
	BranchTypeInd
	BranchTypeCall
	BranchTypeIndCall
	BranchTypeRet
	BranchTypeSyscall
	BranchTypeSysret
	BranchTypeCondCall
	BranchTypeCondRet
)
