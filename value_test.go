package fit

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func scalarDM(globalMesgNum uint16, fields []fieldDefinition, values []RawValue) *dataMessage {
	return &dataMessage{
		Definition: &definitionMessage{GlobalMesgNum: globalMesgNum, Fields: fields},
		Values:     values,
	}
}

func TestDecodeMessageInvalidMaskingScalar(t *testing.T) {
	bt, _ := LookupBaseType(0x84) // uint16
	dm := scalarDM(20, []fieldDefinition{{FieldID: 7, BaseType: bt}}, []RawValue{{Scalar: uint16(0xFFFF)}})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{7: {Name: "heart_rate"}}})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, ok := out.Get("heart_rate")
	if !ok {
		t.Fatal("expected heart_rate field to be present")
	}
	if got.Value != nil {
		t.Fatalf("Value = %v, want nil for an invalid sentinel", got.Value)
	}
}

func TestDecodeMessageInvalidMaskingZVariantUsesZero(t *testing.T) {
	bt, _ := LookupBaseType(0x8B) // uint16z
	dm := scalarDM(20, []fieldDefinition{{FieldID: 2, BaseType: bt}}, []RawValue{{Scalar: uint16(0)}})
	cfg := DefaultConfig()

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("unknown_field_2")
	if got.Value != nil {
		t.Fatalf("Value = %v, want nil for uint16z zero sentinel", got.Value)
	}
}

func TestDecodeMessageScaleOffsetCorrection(t *testing.T) {
	bt, _ := LookupBaseType(0x84) // uint16
	dm := scalarDM(20, []fieldDefinition{{FieldID: 7, BaseType: bt}}, []RawValue{{Scalar: uint16(650)}})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		7: {Name: "speed", Scale: 1000, Offset: 0},
	}})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("speed")
	f, ok := got.Value.(float64)
	if !ok || f != 0.65 {
		t.Fatalf("speed = %v, want 0.65", got.Value)
	}
}

func TestDecodeMessageScaleAndOffsetBothApplied(t *testing.T) {
	bt, _ := LookupBaseType(0x02) // uint8
	dm := scalarDM(20, []fieldDefinition{{FieldID: 3, BaseType: bt}}, []RawValue{{Scalar: uint8(20)}})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		3: {Name: "temperature", Scale: 1, Offset: 10},
	}})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("temperature")
	f, ok := got.Value.(float64)
	if !ok || f != 10 {
		t.Fatalf("temperature = %v, want 10 (20 - offset 10)", got.Value)
	}
}

func TestDecodeMessageDateTimeConversion(t *testing.T) {
	bt, _ := LookupBaseType(0x86) // uint32
	dm := scalarDM(20, []fieldDefinition{{FieldID: 253, BaseType: bt}}, []RawValue{{Scalar: uint32(1000)}})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		253: {Name: "timestamp", Type: "date_time"},
	}})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("timestamp")
	ts, ok := got.Value.(time.Time)
	if !ok {
		t.Fatalf("timestamp value is %T, want time.Time", got.Value)
	}
	want := time.Unix(1000+fitEpochOffset, 0).UTC()
	if !ts.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", ts, want)
	}
}

func TestDecodeMessageNumericPromotion(t *testing.T) {
	bt, _ := LookupBaseType(0x02) // uint8
	dm := scalarDM(20, []fieldDefinition{{FieldID: 1, BaseType: bt}}, []RawValue{{Scalar: uint8(42)}})
	cfg := DefaultConfig()

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("unknown_field_1")
	if _, ok := got.Value.(uint64); !ok {
		t.Fatalf("promoted value is %T, want uint64", got.Value)
	}
}

func TestDecodeMessageArrayElementwiseInvalidMasking(t *testing.T) {
	bt, _ := LookupBaseType(0x02) // uint8
	dm := scalarDM(20, []fieldDefinition{{FieldID: 1, BaseType: bt}},
		[]RawValue{{IsArray: true, Array: []any{uint8(10), uint8(0xFF), uint8(20)}}})
	cfg := DefaultConfig()

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("unknown_field_1")
	arr, ok := got.Value.([]any)
	if !ok || len(arr) != 3 {
		t.Fatalf("array value = %v, want a 3-element slice", got.Value)
	}
	if arr[1] != nil {
		t.Fatalf("arr[1] = %v, want nil for the invalid sentinel element", arr[1])
	}
	if arr[0].(uint64) != 10 || arr[2].(uint64) != 20 {
		t.Fatalf("unexpected array values: %v", arr)
	}
}

func TestDecodeMessageEnumLookup(t *testing.T) {
	bt, _ := LookupBaseType(0x00) // enum
	dm := scalarDM(20, []fieldDefinition{{FieldID: 0, BaseType: bt}}, []RawValue{{Scalar: uint8(1)}})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		0: {Name: "event", Type: "event_type"},
	}})
	p.AddType("event_type", EnumTable{1: "start", 2: "stop"})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, _ := out.Get("event")
	if got.Value != "start" {
		t.Fatalf("event = %v, want %q", got.Value, "start")
	}
}

func TestDecodeMessageSubFieldResolution(t *testing.T) {
	bt, _ := LookupBaseType(0x86) // uint32
	dm := scalarDM(20, []fieldDefinition{
		{FieldID: 0, BaseType: bt},
		{FieldID: 1, BaseType: bt},
	}, []RawValue{
		{Scalar: uint32(1)},   // discriminator field
		{Scalar: uint32(500)}, // value field, reinterpreted by the sub-field
	})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		0: {Name: "discriminator"},
		1: {
			Name: "generic_value",
			SubFields: []SubField{
				{
					Name:       "cycling_power",
					Scale:      1,
					Conditions: []Condition{{FieldID: 0, RawValue: 1}},
				},
			},
		},
	}})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if _, ok := out.Get("generic_value"); ok {
		t.Fatal("base field name should not appear once a sub-field matches")
	}
	got, ok := out.Get("cycling_power")
	if !ok {
		t.Fatal("expected sub-field name cycling_power to be present")
	}
	if got.Value.(uint64) != 500 {
		t.Fatalf("cycling_power = %v, want 500", got.Value)
	}
}

func TestDecodeMessageDevFieldsPassThroughRaw(t *testing.T) {
	dm := scalarDM(20, nil, nil)
	dm.DevValues = []DevRawValue{{FieldNumber: 4, Raw: []byte{1, 2, 3}}}
	cfg := DefaultConfig()

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	got, ok := out.Get(unknownName("dev_field", 4))
	if !ok {
		t.Fatal("expected developer field to be present")
	}
	raw, ok := got.Value.([]byte)
	if !ok || len(raw) != 3 {
		t.Fatalf("dev field value = %v, want a 3-byte slice", got.Value)
	}
}

func TestDecodeMessageFieldMapMatchesExpected(t *testing.T) {
	btU8, _ := LookupBaseType(0x02)
	btU16, _ := LookupBaseType(0x84)
	dm := scalarDM(20, []fieldDefinition{
		{FieldID: 1, BaseType: btU8},
		{FieldID: 2, BaseType: btU16},
	}, []RawValue{
		{Scalar: uint8(5)},
		{Scalar: uint16(0xFFFF)}, // invalid sentinel
	})

	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		1: {Name: "event_count"},
		2: {Name: "battery_level"},
	}})
	cfg := DefaultConfig()
	cfg.Profile = p

	out, err := decodeMessage(dm, cfg)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}

	want := map[string]DecodedField{
		"event_count":   {Value: uint64(5)},
		"battery_level": {Value: nil},
	}
	if diff := cmp.Diff(want, out.Fields); diff != "" {
		t.Fatalf("decoded fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMessageNoProfileDegradesToFieldIDNames(t *testing.T) {
	bt, _ := LookupBaseType(0x02)
	dm := scalarDM(999, []fieldDefinition{{FieldID: 5, BaseType: bt}}, []RawValue{{Scalar: uint8(1)}})
	out, err := decodeMessage(dm, DefaultConfig())
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if out.Name != "unknown_msg_999" {
		t.Fatalf("Name = %q, want %q", out.Name, "unknown_msg_999")
	}
	if _, ok := out.Get("unknown_field_5"); !ok {
		t.Fatal("expected field to be present under its fallback name")
	}
}
