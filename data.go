package fit

import (
	"encoding/binary"
	"math"
)

// RawValue is one field's raw payload from a data message, before any
// profile-driven interpretation. Exactly one of IsString/IsArray
// is meaningful at a time: a string never produces a sequence (arity
// always collapses to one decoded value), arrays are numeric only.
type RawValue struct {
	IsString bool
	Str      string
	IsArray  bool
	Scalar   any   // valid when !IsString && !IsArray
	Array    []any // valid when IsArray; each element matches BaseType.Host
}

// dataMessage is a decoded-from-bytes data message: a reference to its
// governing definition plus the raw values read in field-declaration
// order, one per field def and one per dev field def.
type dataMessage struct {
	Definition *definitionMessage
	Values     []RawValue
	DevValues  []DevRawValue

	// StartPos and HeaderByte locate this message in its source stream,
	// for callers that want byte-offset provenance alongside the decoded
	// value (the 1-based position of the record header byte, and the
	// header byte itself). Set by the message iterator, not by
	// parseDataMessage.
	StartPos   int
	HeaderByte byte
	Raw        []byte
}

// DevRawValue is an opaquely-decoded developer field: raw bytes, passed
// through unmodified except for whole-buffer endian reversal on big-endian
// definitions.
type DevRawValue struct {
	FieldNumber  byte
	DevDataIndex byte
	Raw          []byte
}

// parseDataMessage reads one regular (non-definition, non-compressed) data
// message's payload. s must be positioned just after the already-consumed
// record header byte; the caller (the message iterator) is responsible for
// classifying that header byte and locating dm in the slot table.
func parseDataMessage(s *byteStream, dm *definitionMessage) (*dataMessage, error) {
	msg := &dataMessage{
		Definition: dm,
		Values:     make([]RawValue, 0, len(dm.Fields)),
	}

	for _, fd := range dm.Fields {
		raw, err := s.ReadBytes(int(fd.FieldSize))
		if err != nil {
			return nil, wrapDecoderErr(s.Position(), "reading field", err)
		}
		v, err := decodeRawField(raw, fd, dm.Arch)
		if err != nil {
			return nil, err
		}
		msg.Values = append(msg.Values, v)
	}

	if len(dm.DevFields) > 0 {
		msg.DevValues = make([]DevRawValue, 0, len(dm.DevFields))
		for _, df := range dm.DevFields {
			raw, err := s.ReadBytes(int(df.Size))
			if err != nil {
				return nil, wrapDecoderErr(s.Position(), "reading developer field", err)
			}
			if dm.Arch == binary.BigEndian {
				raw = append([]byte(nil), raw...)
				reverseBytes(raw)
			}
			msg.DevValues = append(msg.DevValues, DevRawValue{
				FieldNumber:  df.FieldNumber,
				DevDataIndex: df.DevDataIndex,
				Raw:          raw,
			})
		}
	}

	return msg, nil
}

func decodeRawField(raw []byte, fd fieldDefinition, arch binary.ByteOrder) (RawValue, error) {
	bt := fd.BaseType

	if bt.Host == HostString {
		s, err := decodeFieldString(raw)
		if err != nil {
			return RawValue{}, err
		}
		return RawValue{IsString: true, Str: s}, nil
	}

	if bt.Size <= 0 || len(raw)%bt.Size != 0 {
		return RawValue{}, decoderErrf(-1, "field %d: size %d not a multiple of base type %s size %d", fd.FieldID, len(raw), bt.Name, bt.Size)
	}

	count := len(raw) / bt.Size
	if count == 1 {
		v, err := decodeScalar(raw, bt, arch)
		if err != nil {
			return RawValue{}, err
		}
		return RawValue{Scalar: v}, nil
	}

	elems := make([]any, 0, count)
	for i := 0; i < count; i++ {
		v, err := decodeScalar(raw[i*bt.Size:(i+1)*bt.Size], bt, arch)
		if err != nil {
			return RawValue{}, err
		}
		elems = append(elems, v)
	}
	return RawValue{IsArray: true, Array: elems}, nil
}

// decodeScalar reinterprets exactly bt.Size bytes as bt.Host under arch.
func decodeScalar(raw []byte, bt BaseType, arch binary.ByteOrder) (any, error) {
	switch bt.Host {
	case HostUint8:
		return raw[0], nil
	case HostInt8:
		return int8(raw[0]), nil
	case HostUint16:
		return arch.Uint16(raw), nil
	case HostInt16:
		return int16(arch.Uint16(raw)), nil
	case HostUint32:
		return arch.Uint32(raw), nil
	case HostInt32:
		return int32(arch.Uint32(raw)), nil
	case HostUint64:
		return arch.Uint64(raw), nil
	case HostInt64:
		return int64(arch.Uint64(raw)), nil
	case HostFloat32:
		return math.Float32frombits(arch.Uint32(raw)), nil
	case HostFloat64:
		return math.Float64frombits(arch.Uint64(raw)), nil
	case HostByte:
		return raw[0], nil
	default:
		return nil, decoderErrf(-1, "unsupported base type %s for scalar decode", bt.Name)
	}
}

// decodeFieldString reads the NUL-terminated content of a string field.
func decodeFieldString(raw []byte) (string, error) {
	for i, c := range raw {
		if c == 0x00 {
			return string(raw[:i]), nil
		}
	}
	return string(raw), nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
