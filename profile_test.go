package fit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestProfileAddAndLookupMessage(t *testing.T) {
	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		7: {Name: "heart_rate", Units: "bpm"},
	}})

	rec, ok := p.Message(20)
	if !ok || rec.Name != "record" {
		t.Fatalf("Message(20) = %+v, %v", rec, ok)
	}
	fr, ok := p.Field(20, 7)
	if !ok || fr.Name != "heart_rate" {
		t.Fatalf("Field(20,7) = %+v, %v", fr, ok)
	}
	if _, ok := p.Field(20, 99); ok {
		t.Fatal("expected no field record for unknown field id")
	}
}

func TestProfileAddMessageInitializesNilFields(t *testing.T) {
	p := NewProfile()
	p.AddMessage(1, &MessageRecord{Name: "nilfields"})
	rec, ok := p.Message(1)
	if !ok {
		t.Fatal("expected message to be registered")
	}
	if rec.Fields == nil {
		t.Fatal("expected AddMessage to initialize a non-nil Fields map")
	}
}

func TestProfileTypeLookup(t *testing.T) {
	p := NewProfile()
	p.AddType("mesg_num", EnumTable{20: "record", 21: "event"})
	table, ok := p.Type("mesg_num")
	if !ok || table[20] != "record" {
		t.Fatalf("Type(mesg_num) = %+v, %v", table, ok)
	}
}

func TestMatchSubFieldORWithinGroup(t *testing.T) {
	subFields := []SubField{
		{Name: "cycling_power", Conditions: []Condition{{FieldID: 0, RawValue: 1}, {FieldID: 0, RawValue: 2}}},
	}
	raw := map[byte]int64{0: 2}
	sf, ok := matchSubField(subFields, raw)
	if !ok || sf.Name != "cycling_power" {
		t.Fatalf("expected OR-matched sub-field, got %+v, %v", sf, ok)
	}
}

func TestMatchSubFieldANDAcrossGroups(t *testing.T) {
	subFields := []SubField{
		{Name: "running_power", Conditions: []Condition{{FieldID: 0, RawValue: 1}, {FieldID: 1, RawValue: 5}}},
	}
	raw := map[byte]int64{0: 1, 1: 9} // field 1 fails to match
	if _, ok := matchSubField(subFields, raw); ok {
		t.Fatal("expected no match when one AND-group condition fails")
	}

	raw[1] = 5
	sf, ok := matchSubField(subFields, raw)
	if !ok || sf.Name != "running_power" {
		t.Fatalf("expected AND-matched sub-field, got %+v, %v", sf, ok)
	}
}

func TestMatchSubFieldNoConditionsNeverMatches(t *testing.T) {
	subFields := []SubField{{Name: "bare"}}
	if _, ok := matchSubField(subFields, map[byte]int64{}); ok {
		t.Fatal("a sub-field with no conditions should never match")
	}
}

func TestProfileFieldRecordsMatchExpectedShape(t *testing.T) {
	p := NewProfile()
	p.AddMessage(20, &MessageRecord{Name: "record", Fields: map[byte]*FieldRecord{
		7: {Name: "heart_rate", Units: "bpm", Scale: 1},
		8: {Name: "cadence", Units: "rpm", Scale: 1},
	}})

	rec, ok := p.Message(20)
	if !ok {
		t.Fatal("expected message 20 to be registered")
	}

	want := map[byte]*FieldRecord{
		7: {Name: "heart_rate", Units: "bpm", Scale: 1},
		8: {Name: "cadence", Units: "rpm", Scale: 1},
	}
	if diff := cmp.Diff(want, rec.Fields, cmpopts.IgnoreFields(FieldRecord{}, "SubFields")); diff != "" {
		t.Fatalf("field records mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchSubFieldFirstDeclaredWins(t *testing.T) {
	subFields := []SubField{
		{Name: "first", Conditions: []Condition{{FieldID: 0, RawValue: 1}}},
		{Name: "second", Conditions: []Condition{{FieldID: 0, RawValue: 1}}},
	}
	sf, ok := matchSubField(subFields, map[byte]int64{0: 1})
	if !ok || sf.Name != "first" {
		t.Fatalf("expected first declared match to win, got %+v", sf)
	}
}
