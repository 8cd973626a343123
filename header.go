package fit

import (
	"encoding/binary"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// fitSignature is the ".FIT" magic required at header byte offset 8.
var fitSignature = [4]byte{'.', 'F', 'I', 'T'}

// Header is the 12- or 14-byte FIT file header.
type Header struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	Signature       [4]byte
	HasCRC          bool
	CRC             uint16
}

const (
	headerSizeNoCRC = 12
	headerSizeCRC   = 14
)

// readHeader parses the header starting at the stream's current position.
// When validate is true and the header carries a CRC, the CRC is checked
// over the first 12 bytes and a mismatch is fatal. When
// seekBack is true the stream position is restored to where it was before
// the call, on both the success and failure paths — used by callers that
// only want to inspect the header without beginning a scan.
func readHeader(s *byteStream, validate, seekBack bool) (Header, error) {
	start := s.Position()
	restore := func() {
		if seekBack {
			_ = s.Seek(start)
		}
	}

	size, err := s.ReadByte()
	if err != nil {
		restore()
		return Header{}, err
	}
	if size != headerSizeNoCRC && size != headerSizeCRC {
		restore()
		return Header{}, decoderErrf(start, "invalid header size %d (want 12 or 14)", size)
	}

	h := Header{Size: size}

	h.ProtocolVersion, err = s.ReadByte()
	if err != nil {
		restore()
		return Header{}, err
	}
	h.ProfileVersion, err = s.ReadU16(binary.LittleEndian)
	if err != nil {
		restore()
		return Header{}, err
	}
	h.DataSize, err = s.ReadU32(binary.LittleEndian)
	if err != nil {
		restore()
		return Header{}, err
	}
	sig, err := s.ReadBytes(4)
	if err != nil {
		restore()
		return Header{}, err
	}
	copy(h.Signature[:], sig)
	if h.Signature != fitSignature {
		restore()
		return Header{}, decoderErrf(start, "bad file signature %q, want %q", sig, fitSignature[:])
	}

	if size == headerSizeCRC {
		h.HasCRC = true
		h.CRC, err = s.ReadU16(binary.LittleEndian)
		if err != nil {
			restore()
			return Header{}, err
		}
		if validate {
			headerBytes, err := s.Slice(start, headerSizeNoCRC)
			if err != nil {
				restore()
				return Header{}, err
			}
			computed := dyncrc16.Checksum(headerBytes)
			if computed != h.CRC {
				restore()
				return Header{}, decoderErrf(start, "header CRC mismatch: stored 0x%04X, computed 0x%04X", h.CRC, computed)
			}
		}
	}

	restore()
	return h, nil
}
