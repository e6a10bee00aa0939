//go:build linux

package pevent

import "golang.org/x/sys/unix"

// ConfigFromPerfEventAttr builds the Config for decoding records of a live
// counter opened through unix.PerfEventOpen with attr. It is the in-process
// counterpart of ConfigFromAttr, for callers that hold the kernel descriptor
// rather than a captured one.
func ConfigFromPerfEventAttr(attr *unix.PerfEventAttr) Config {
	return NewConfig().
		WithSampleFormat(SampleFormat(attr.Sample_type)).
		WithReadFormat(ReadFormat(attr.Read_format)).
		WithRegsUser(attr.Sample_regs_user).
		WithRegsIntr(attr.Sample_regs_intr).
		WithSampleIDAll(AttrFlags(attr.Bits).Has(AttrSampleIDAll)).
		WithBranchHWIndex(BranchSampleFormat(attr.Branch_sample_type).Has(BranchSampleHWIndex))
}
