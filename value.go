package fit

import (
	"math"
	"time"
)

// fitEpochOffset is the number of seconds between the Unix epoch and the
// FIT epoch, 1989-12-31T00:00:00Z.
const fitEpochOffset int64 = 631065600

// DecoderConfig toggles the optional stages of the value decode pipeline.
// DefaultConfig turns every stage on; a caller that wants raw, unscaled,
// un-interpreted output can flip the relevant flags off instead of
// stepping around the pipeline.
type DecoderConfig struct {
	ProcessInvalids  bool
	ApplyScaleOffset bool
	ConvertDatetime  bool

	// Tolerant, when true, makes the message iterator skip compressed
	// timestamp messages instead of failing the whole decode on them.
	Tolerant bool

	// Profile drives sub-field resolution, enum lookup, and units. A nil
	// Profile degrades every message to its raw field shape: field names
	// become "unknown_field_<id>", no enums or sub-fields resolve, and
	// scale/offset/date-time conversion are skipped field by field.
	Profile *Profile
}

// DefaultConfig returns a DecoderConfig with every interpretation stage
// enabled and no profile attached.
func DefaultConfig() DecoderConfig {
	return DecoderConfig{
		ProcessInvalids:  true,
		ApplyScaleOffset: true,
		ConvertDatetime:  true,
	}
}

// decodeMessage runs the full value pipeline over one parsed data message:
// sub-field resolution, invalid masking, enum lookup, scale/offset,
// date-time conversion, and numeric promotion, in that order per field.
func decodeMessage(dm *dataMessage, cfg DecoderConfig) (*DecodedMessage, error) {
	def := dm.Definition
	out := &DecodedMessage{
		GlobalMesgNum: def.GlobalMesgNum,
		Fields:        make(map[string]DecodedField, len(dm.Values)),
		order:         make([]string, 0, len(dm.Values)+len(dm.DevValues)),
		StartPos:      dm.StartPos,
		HeaderByte:    dm.HeaderByte,
		Raw:           dm.Raw,
	}

	var msgRec *MessageRecord
	if cfg.Profile != nil {
		msgRec, _ = cfg.Profile.Message(def.GlobalMesgNum)
	}
	out.Name = messageName(msgRec, def.GlobalMesgNum)

	rawInts := collectRawInts(dm)

	for i, fd := range def.Fields {
		v := dm.Values[i]

		var fr *FieldRecord
		if msgRec != nil {
			fr = msgRec.Fields[fd.FieldID]
		}

		name, typ, units, scale, offset := fieldShape(fr, fd.FieldID)
		if fr != nil && len(fr.SubFields) > 0 {
			if sf, ok := matchSubField(fr.SubFields, rawInts); ok {
				name, typ, units, scale, offset = sf.Name, sf.Type, sf.Units, sf.Scale, sf.Offset
			}
		}

		decoded, err := decodeFieldValue(v, fd.BaseType, typ, scale, offset, cfg)
		if err != nil {
			return nil, err
		}

		out.set(name, DecodedField{Value: decoded, Unit: units})
	}

	for _, dv := range dm.DevValues {
		name := devFieldName(dv)
		out.set(name, DecodedField{Value: append([]byte(nil), dv.Raw...)})
	}

	return out, nil
}

func messageName(rec *MessageRecord, num uint16) string {
	if rec != nil && rec.Name != "" {
		return rec.Name
	}
	return unknownName("unknown_msg", int(num))
}

func fieldShape(fr *FieldRecord, fieldID byte) (name, typ, units string, scale, offset float64) {
	if fr == nil {
		return unknownName("unknown_field", int(fieldID)), "", "", 0, 0
	}
	return fr.Name, fr.Type, fr.Units, fr.Scale, fr.Offset
}

func unknownName(prefix string, n int) string {
	const digits = "0123456789"
	b := []byte(prefix + "_")
	if n == 0 {
		return string(b) + "0"
	}
	var tmp []byte
	for n > 0 {
		tmp = append(tmp, digits[n%10])
		n /= 10
	}
	for i := len(tmp) - 1; i >= 0; i-- {
		b = append(b, tmp[i])
	}
	return string(b)
}

func devFieldName(dv DevRawValue) string {
	return unknownName("dev_field", int(dv.FieldNumber))
}

// collectRawInts builds the field-id -> raw integer value map that
// sub-field condition matching reads against. Array and string fields
// never participate and are simply absent from the map.
func collectRawInts(dm *dataMessage) map[byte]int64 {
	out := make(map[byte]int64, len(dm.Values))
	for i, fd := range dm.Definition.Fields {
		v := dm.Values[i]
		if v.IsString || v.IsArray {
			continue
		}
		if iv, ok := asInt64(v.Scalar); ok {
			out[fd.FieldID] = iv
		}
	}
	return out
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case uint8:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case int16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// decodeFieldValue runs one field's value through invalid masking, enum
// lookup, scale/offset, date-time conversion, and numeric promotion. It
// never fails on a raw value it cannot interpret further: anything it
// doesn't recognize up in cfg.Profile passes through promoted but
// unscaled.
func decodeFieldValue(v RawValue, bt BaseType, typ string, scale, offset float64, cfg DecoderConfig) (any, error) {
	if v.IsString {
		return v.Str, nil
	}

	enumTable := lookupEnum(cfg.Profile, typ)

	if v.IsArray {
		result := make([]any, 0, len(v.Array))
		for _, elem := range v.Array {
			dv, err := decodeScalarValue(elem, bt, typ, scale, offset, enumTable, cfg)
			if err != nil {
				return nil, err
			}
			result = append(result, dv)
		}
		return result, nil
	}

	return decodeScalarValue(v.Scalar, bt, typ, scale, offset, enumTable, cfg)
}

func lookupEnum(p *Profile, typ string) EnumTable {
	if p == nil || typ == "" {
		return nil
	}
	t, _ := p.Type(typ)
	return t
}

func decodeScalarValue(raw any, bt BaseType, typ string, scale, offset float64, enumTable EnumTable, cfg DecoderConfig) (any, error) {
	if cfg.ProcessInvalids && bt.Numeric {
		bits, ok := rawBits(raw, bt)
		if ok && bt.IsInvalidRaw(bits) {
			return nil, nil
		}
	}

	if enumTable != nil {
		if iv, ok := asInt64(raw); ok {
			if label, ok := enumTable[iv]; ok {
				return label, nil
			}
		}
	}

	if cfg.ApplyScaleOffset && scale != 0 && scale != 1 {
		f, ok := asFloat64(raw)
		if ok {
			return f/scale - offset, nil
		}
	} else if cfg.ApplyScaleOffset && offset != 0 {
		f, ok := asFloat64(raw)
		if ok {
			return f - offset, nil
		}
	}

	if cfg.ConvertDatetime && typ == "date_time" {
		if iv, ok := asInt64(raw); ok {
			return time.Unix(iv+fitEpochOffset, 0).UTC(), nil
		}
	}

	return promote(raw), nil
}

// rawBits recovers the bit pattern a decoded Go scalar came from, so it can
// be compared against a base type's invalid sentinel.
func rawBits(v any, bt BaseType) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case int8:
		return uint64(uint8(n)), true
	case uint16:
		return uint64(n), true
	case int16:
		return uint64(uint16(n)), true
	case uint32:
		return uint64(n), true
	case int32:
		return uint64(uint32(n)), true
	case uint64:
		return n, true
	case int64:
		return uint64(n), true
	case float32:
		return uint64(math.Float32bits(n)), true
	case float64:
		return math.Float64bits(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case uint8:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case int16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// promote widens a decoded scalar to int64, uint64, or float64. Byte-typed
// values are uint8 and widen to uint64; strings and other non-numeric values
// pass through unchanged.
func promote(v any) any {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return v
	}
}
