// Package errs defines the sentinel errors shared across the pevent module.
//
// Decode failures fall into three categories, each with a sentinel that
// callers match with errors.Is. Any other error surfaced by a parse buffer
// backend (for example a network read failing mid-record) is passed through
// wrapped, so errors.Is still finds the original cause.
package errs

import "errors"

var (
	// ErrUnexpectedEOF indicates the input ended before a complete value or
	// record could be decoded. For in-memory inputs this is a truncated
	// capture; for streaming inputs it may simply mean the rest of the
	// record has not arrived yet.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrInvalidRecord indicates the bytes were available but violate the
	// record layout, such as a header size smaller than the header itself
	// or a length field pointing past the end of the record.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrUnsupportedConfig indicates the record cannot be decoded under the
	// provided Config, such as a read_format with flag bits this decoder
	// does not know. The input may be well-formed; the decoder refuses to
	// guess at field widths it cannot verify.
	ErrUnsupportedConfig = errors.New("unsupported event configuration")
)
