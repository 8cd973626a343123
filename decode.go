// Package fit decodes FIT (Flexible and Interoperable Data Transfer)
// binary activity and device files: the header, the alternating
// definition/data message stream, and the trailing file CRC.
package fit

import (
	"io"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// DecodeHeader parses just the file header, leaving the rest of buf
// unread. Useful for sniffing protocol/profile version or declared data
// size without committing to a full decode.
func DecodeHeader(buf []byte) (Header, error) {
	s := newByteStream(buf)
	return readHeader(s, true, false)
}

// Decode parses an entire FIT file held in memory and returns every
// message it contains, fully interpreted according to cfg. Pass
// DefaultConfig() with a populated cfg.Profile for normal use; an empty
// DecoderConfig{} decodes structurally only, leaving field names as
// "unknown_field_<id>" and performing no scaling, enum, or date-time
// conversion.
func Decode(buf []byte, cfg DecoderConfig) (*DecodedFile, error) {
	s := newByteStream(buf)

	header, err := readHeader(s, true, false)
	if err != nil {
		return nil, err
	}

	out := newDecodedFile(header)
	it := newMessageIterator(s, header)

	for {
		dm, err := it.Next(cfg.Tolerant)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		msg, err := decodeMessage(dm, cfg)
		if err != nil {
			return nil, err
		}
		out.add(msg)
	}

	if err := verifyTrailingCRC(s, header); err != nil {
		return nil, err
	}

	return out, nil
}

// DecodeMessage decodes a single definition message and its paired data
// message, each given as raw bytes including their own record header
// byte, and runs the result through the same value pipeline Decode and
// File.Next use. It exists for callers that already hold a definition
// and data record in hand — a test fixture, a record sliced out of some
// other framing — and want them interpreted without assembling a whole
// file around them.
func DecodeMessage(def, data []byte, cfg DecoderConfig) (*DecodedMessage, error) {
	if len(def) == 0 {
		return nil, decoderErrf(0, "DecodeMessage: definition message is empty")
	}

	defStream := newByteStream(def[1:])
	defMsg, err := parseDefinitionMessage(defStream, def[0])
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, decoderErrf(0, "DecodeMessage: data message is empty")
	}

	dataStream := newByteStream(data[1:])
	dm, err := parseDataMessage(dataStream, defMsg)
	if err != nil {
		return nil, err
	}

	return decodeMessage(dm, cfg)
}

// File is a lazily-decoded FIT file: each call to Next yields the next
// message without materializing the whole file up front, for callers that
// want to stream large files without holding every message in memory at
// once.
type File struct {
	s      *byteStream
	it     *messageIterator
	cfg    DecoderConfig
	Header Header
}

// NewFile parses the header of buf and returns a File ready for Next.
func NewFile(buf []byte, cfg DecoderConfig) (*File, error) {
	s := newByteStream(buf)
	header, err := readHeader(s, true, false)
	if err != nil {
		return nil, err
	}
	return &File{
		s:      s,
		it:     newMessageIterator(s, header),
		cfg:    cfg,
		Header: header,
	}, nil
}

// Next returns the next decoded message, or (nil, io.EOF) once the file
// body is exhausted (the trailing CRC, if any, is not validated by Next;
// call VerifyCRC after exhausting the iterator if that check is wanted).
func (f *File) Next() (*DecodedMessage, error) {
	dm, err := f.it.Next(f.cfg.Tolerant)
	if err != nil {
		return nil, err
	}
	return decodeMessage(dm, f.cfg)
}

// VerifyCRC checks the trailing two-byte file CRC against the bytes
// preceding it. Call it only after Next has returned io.EOF.
func (f *File) VerifyCRC() error {
	return verifyTrailingCRC(f.s, f.Header)
}

func verifyTrailingCRC(s *byteStream, header Header) error {
	end := s.Length()
	crcBytes, err := s.Slice(end-1, 2)
	if err != nil {
		return wrapDecoderErr(s.Position(), "reading trailing file CRC", err)
	}
	stored := uint16(crcBytes[0]) | uint16(crcBytes[1])<<8

	bodyBytes, err := s.Slice(1, end-2)
	if err != nil {
		return wrapDecoderErr(s.Position(), "slicing file body for CRC check", err)
	}
	computed := dyncrc16.Checksum(bodyBytes)
	if computed != stored {
		return decoderErrf(end-1, "file CRC mismatch: stored 0x%04X, computed 0x%04X", stored, computed)
	}
	return nil
}
