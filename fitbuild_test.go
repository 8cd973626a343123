package fit

import (
	"encoding/binary"

	"github.com/lucasjlepore/fitdecode/dyncrc16"
)

// fileBuilder assembles a synthetic FIT byte stream field by field, the
// way a hand-written protocol test normally does when there's no encoder
// to lean on: callers append raw definition and data message bytes in
// wire order and Bytes computes the header and trailing CRC.
type fileBuilder struct {
	body []byte
}

func newFileBuilder() *fileBuilder {
	return &fileBuilder{}
}

func (b *fileBuilder) raw(bytes ...byte) *fileBuilder {
	b.body = append(b.body, bytes...)
	return b
}

// definition appends a regular (non-compressed) little-endian definition
// message for localSlot, binding globalMesgNum with the given field
// triples (fieldID, size, baseTypeID).
func (b *fileBuilder) definition(localSlot byte, globalMesgNum uint16, fields [][3]byte) *fileBuilder {
	b.raw(recordHeaderDefinitionMask | localSlot)
	b.raw(0x00) // reserved
	b.raw(0x00) // architecture: little-endian
	gm := make([]byte, 2)
	binary.LittleEndian.PutUint16(gm, globalMesgNum)
	b.raw(gm...)
	b.raw(byte(len(fields)))
	for _, f := range fields {
		b.raw(f[0], f[1], f[2])
	}
	return b
}

// data appends a regular data message for localSlot with the given
// already-encoded field payload bytes concatenated in field-declaration
// order.
func (b *fileBuilder) data(localSlot byte, payload []byte) *fileBuilder {
	b.raw(localSlot)
	b.raw(payload...)
	return b
}

// Bytes assembles the complete file: 12-byte header (with DataSize set to
// the body length), the body, and the trailing file CRC.
func (b *fileBuilder) Bytes() []byte {
	header := make([]byte, 12)
	header[0] = 12
	header[1] = 0x10
	binary.LittleEndian.PutUint16(header[2:4], 2132)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(b.body)))
	copy(header[8:12], ".FIT")

	out := append(append([]byte(nil), header...), b.body...)
	crc := dyncrc16.Checksum(out)
	crcBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(crcBytes, crc)
	return append(out, crcBytes...)
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
