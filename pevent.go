// Package pevent decodes the binary record stream produced by the Linux
// perf_event_open facility, both live ring-buffer data and perf.data-style
// captures.
//
// Records are variable-length and carry only a small fixed header; the
// layout of their bodies depends on the perf_event_attr the event was opened
// with. Decoding therefore takes two inputs: the bytes and a Config
// describing that descriptor. The decoder never talks to the kernel and
// never re-encodes; it only turns bytes into typed values.
//
// # Core Features
//
//   - All kernel record types (MMAP through AUX_OUTPUT_HW_ID), plus a raw
//     fallback for unknown ones
//   - Config-driven decoding of SAMPLE records, sample_id trailers and
//     read_format counter values
//   - Little, big and foreign-endian input via the endian subpackage
//   - Zero-copy decoding from in-memory captures: decoded byte and integer
//     slices alias the input where byte order and layout permit
//   - Streaming input from any io.Reader, with allocations bounded against
//     corrupt length fields
//   - Visitor-based dispatch that only decodes the record kinds the caller
//     handles
//
// # Basic Usage
//
// Decoding every record from an in-memory capture:
//
//	cfg := pevent.NewConfig().
//		WithSampleFormat(pevent.SampleFormatTID | pevent.SampleFormatTime).
//		WithSampleIDAll(true)
//
//	parser := pevent.NewBytesParser(data, cfg)
//	for {
//		rec, md, err := parser.NextRecord()
//		if errors.Is(err, errs.ErrUnexpectedEOF) {
//			break
//		} else if err != nil {
//			return err
//		}
//
//		fmt.Println(md.Type, rec)
//	}
//
// Decoding only the kinds you care about, with a Visitor:
//
//	type commLogger struct{}
//
//	func (commLogger) VisitUnimplemented(*pevent.RecordMetadata) error { return nil }
//	func (commLogger) VisitComm(rec *pevent.Comm, _ *pevent.RecordMetadata) error {
//		fmt.Printf("pid %d is now %q\n", rec.PID, rec.Comm)
//		return nil
//	}
//
//	for {
//		if err := parser.ParseRecord(commLogger{}); err != nil {
//			break
//		}
//	}
//
// The Config normally comes from the event's descriptor: ConfigFromAttr for
// an EventAttr decoded out of a capture, or ConfigFromPerfEventAttr (Linux
// only) for a live unix.PerfEventAttr.
//
// # Package Structure
//
// This package holds the parser, configuration and record types. The endian
// subpackage provides the byte order engines and the errs subpackage the
// sentinel errors decode failures are matched against.
package pevent
