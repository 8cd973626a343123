package fit

import (
	"encoding/binary"
)

// byteStream is a random-access cursor over an in-memory byte buffer.
// Position is 1-based: it moves only through explicit read/seek
// operations. Reads are bounded by the buffer length only; AtEnd reports
// when position has reached the trailing two-byte file CRC.
type byteStream struct {
	buf []byte
	pos int // 1-based; always in [1, len(buf)+1]
}

func newByteStream(buf []byte) *byteStream {
	return &byteStream{buf: buf, pos: 1}
}

func (s *byteStream) Length() int    { return len(s.buf) }
func (s *byteStream) Position() int  { return s.pos }
func (s *byteStream) Remaining() int { return len(s.buf) - s.pos + 1 }

// AtEnd is true once position has reached length-1, reserving the final
// two bytes for the trailing CRC.
func (s *byteStream) AtEnd() bool { return s.pos > len(s.buf)-2 }

func (s *byteStream) Seek(p int) error {
	if p < 1 || p > len(s.buf)+1 {
		return streamErrf(p, "seek target %d out of range [1,%d]", p, len(s.buf)+1)
	}
	s.pos = p
	return nil
}

func (s *byteStream) SeekStart() { s.pos = 1 }

func (s *byteStream) PeekBytes(n int) ([]byte, error) {
	if n < 0 || s.pos+n-1 > len(s.buf) {
		return nil, streamErrf(s.pos, "peek %d bytes exceeds length %d", n, len(s.buf))
	}
	return s.buf[s.pos-1 : s.pos-1+n], nil
}

func (s *byteStream) PeekByte() (byte, error) {
	b, err := s.PeekBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *byteStream) ReadBytes(n int) ([]byte, error) {
	b, err := s.PeekBytes(n)
	if err != nil {
		return nil, err
	}
	s.pos += n
	return b, nil
}

func (s *byteStream) ReadByte() (byte, error) {
	b, err := s.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *byteStream) ReadU16(order binary.ByteOrder) (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

func (s *byteStream) ReadU32(order binary.ByteOrder) (uint32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

func (s *byteStream) ReadU64(order binary.ByteOrder) (uint64, error) {
	b, err := s.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(b), nil
}

// ReadString reads exactly n bytes (the field's declared width) and
// truncates at the first NUL. The base layer does no UTF-8 validation
// beyond the length check; ill-formed sequences are the value decoder's
// concern.
func (s *byteStream) ReadString(n int) (string, error) {
	b, err := s.ReadBytes(n)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0x00 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

// Slice returns the raw bytes of [start, start+length) without moving pos.
func (s *byteStream) Slice(start, length int) ([]byte, error) {
	if start < 1 || length < 0 || start+length-1 > len(s.buf) {
		return nil, streamErrf(start, "slice [%d,%d) exceeds length %d", start, start+length, len(s.buf))
	}
	return s.buf[start-1 : start-1+length], nil
}
