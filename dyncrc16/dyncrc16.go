// Package dyncrc16 implements the FIT protocol's 16-bit CRC.
//
// The layout mirrors github.com/tormoder/fit/dyncrc16 (the CRC subpackage
// of the upstream FIT decoder this module's dependency graph once pulled
// in transitively through github.com/tormoder/fit): a streaming Hash16
// for use as an io.Writer sink, plus a Checksum one-shot helper for
// computing the CRC of a byte range directly.
package dyncrc16

// crcTable is the FIT CRC nibble table from the FIT protocol definition.
var crcTable = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400,
	0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401,
	0x5000, 0x9C01, 0x8801, 0x4400,
}

// Hash16 is a streaming FIT CRC-16 accumulator.
type Hash16 struct {
	crc uint16
}

// New returns a Hash16 with a zeroed accumulator.
func New() Hash16 {
	return Hash16{}
}

func updateNibble(crc uint16, nibble byte) uint16 {
	tmp := crcTable[(crc^uint16(nibble))&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc ^= tmp
	return crc
}

// Write feeds bytes into the running checksum. It never returns an error.
func (h *Hash16) Write(p []byte) (int, error) {
	crc := h.crc
	for _, b := range p {
		crc = updateNibble(crc, b&0x0F)
		crc = updateNibble(crc, (b>>4)&0x0F)
	}
	h.crc = crc
	return len(p), nil
}

// Sum16 returns the current 16-bit checksum.
func (h *Hash16) Sum16() uint16 { return h.crc }

// Sum appends the little-endian checksum bytes to b.
func (h *Hash16) Sum(b []byte) []byte {
	s := h.Sum16()
	return append(b, byte(s), byte(s>>8))
}

// Reset zeroes the accumulator.
func (h *Hash16) Reset() { h.crc = 0 }

// Size is the number of bytes Sum appends.
func (h *Hash16) Size() int { return 2 }

// BlockSize is the ideal write granularity; the FIT CRC has none, so 1.
func (h *Hash16) BlockSize() int { return 1 }

// Checksum computes the FIT CRC-16 of data in one call.
func Checksum(data []byte) uint16 {
	var h Hash16
	_, _ = h.Write(data)
	return h.Sum16()
}
