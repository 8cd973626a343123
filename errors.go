package fit

import (
	"errors"
	"fmt"
)

// ErrCompressedTimestampUnsupported is wrapped by a DecoderError whenever
// the message iterator meets a compressed-timestamp record header. The
// format distinguishes these from regular data messages at the header
// byte, but decoding the compressed form is not supported.
var ErrCompressedTimestampUnsupported = errors.New("compressed timestamp messages are not supported")

// StreamError is raised by the byte stream and the header reader for
// EOF, invalid seeks, and other byte-range problems.
type StreamError struct {
	Msg string
	Pos int // -1 when no byte position applies
}

func (e *StreamError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("fit: stream error at byte %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("fit: stream error: %s", e.Msg)
}

func streamErrf(pos int, format string, args ...any) error {
	return &StreamError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// DecoderError is raised by the header and file CRC checks, the message
// iterator, the definition decoder, and the data decoder for schema-level
// problems: data before a definition, compressed timestamp messages,
// non-zero reserved bytes, unknown architecture bytes, and unsupported
// field base/size combinations. The value decoder raises none: it treats a
// zero scale as "not scaled" and does not reject it. Zero field scales are
// rejected only when a profile is built by profileio.Build.
type DecoderError struct {
	Msg string
	Pos int // -1 when no byte position applies
	Err error
}

func (e *DecoderError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("fit: decode error at byte %d: %s", e.Pos, msg)
	}
	return fmt.Sprintf("fit: decode error: %s", msg)
}

func (e *DecoderError) Unwrap() error { return e.Err }

func decoderErrf(pos int, format string, args ...any) error {
	return &DecoderError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func wrapDecoderErr(pos int, msg string, err error) error {
	return &DecoderError{Msg: msg, Pos: pos, Err: err}
}
