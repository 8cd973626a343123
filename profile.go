package fit

// Profile is the immutable-after-load schema catalog the value decoder
// drives its interpretation from. It is treated
// as an opaque external collaborator by the core: loading one from disk
// is out of scope here (see package profileio for a concrete loader) but
// the data model itself — messages, fields, enum tables, sub-fields — is
// in scope and is what this file defines.
type Profile struct {
	messages map[uint16]*MessageRecord
	types    map[string]EnumTable
}

// NewProfile returns an empty, mutable-until-first-use profile. Callers
// build it up with AddMessage/AddType and then treat it as read-only;
// Profile performs no internal locking.
func NewProfile() *Profile {
	return &Profile{
		messages: make(map[uint16]*MessageRecord),
		types:    make(map[string]EnumTable),
	}
}

// EnumTable maps a type's raw integer values to their label.
type EnumTable map[int64]string

// MessageRecord describes one global message number's shape.
type MessageRecord struct {
	Name   string
	Fields map[byte]*FieldRecord
}

// FieldRecord is a profile's description of one field of one message.
type FieldRecord struct {
	Name          string
	Type          string // semantic type name; may equal a base type name or an enum type name
	Units         string
	Scale         float64 // 0 means "not scaled"; profiles store 1 for unscaled fields
	Offset        float64
	SubFields     []SubField
	HasComponents bool // component bit-unpacking is out of scope; noted, never unpacked
}

// SubField is an alternate interpretation of a field, selected when its map
// Conditions hold against the other raw field values of the same message
// (see Condition for how they combine).
type SubField struct {
	Name       string
	Type       string
	Units      string
	Scale      float64
	Offset     float64
	Conditions []Condition
}

// Condition references another field of the same message by id and the
// raw value it must equal for this group to hold. Conditions are grouped
// by FieldID in subFieldMatches; within a group they OR together,
// across groups they AND together.
type Condition struct {
	FieldID  byte
	RawValue int64
}

// AddMessage registers (or replaces) a message record by global number.
func (p *Profile) AddMessage(num uint16, rec *MessageRecord) {
	if rec.Fields == nil {
		rec.Fields = make(map[byte]*FieldRecord)
	}
	p.messages[num] = rec
}

// AddType registers (or replaces) an enum table by semantic type name.
func (p *Profile) AddType(name string, table EnumTable) {
	p.types[name] = table
}

// Message looks up a message record by global message number.
func (p *Profile) Message(num uint16) (*MessageRecord, bool) {
	rec, ok := p.messages[num]
	return rec, ok
}

// Field looks up a field record of a known message by field id.
func (p *Profile) Field(num uint16, fieldID byte) (*FieldRecord, bool) {
	rec, ok := p.messages[num]
	if !ok {
		return nil, false
	}
	fr, ok := rec.Fields[fieldID]
	return fr, ok
}

// Type looks up an enum table by semantic type name.
func (p *Profile) Type(name string) (EnumTable, bool) {
	t, ok := p.types[name]
	return t, ok
}

// matchSubField returns the first sub-field (in declaration order) whose
// conditions all hold against raw, the message's other raw field values
// keyed by field id. Conditions sharing a field id combine with OR; across
// distinct field ids they combine with AND. A sub-field with no conditions
// never matches.
func matchSubField(subFields []SubField, raw map[byte]int64) (*SubField, bool) {
	for i := range subFields {
		sf := &subFields[i]
		if len(sf.Conditions) == 0 {
			continue
		}
		if subFieldMatches(sf, raw) {
			return sf, true
		}
	}
	return nil, false
}

func subFieldMatches(sf *SubField, raw map[byte]int64) bool {
	groups := make(map[byte][]int64)
	var order []byte
	for _, c := range sf.Conditions {
		if _, seen := groups[c.FieldID]; !seen {
			order = append(order, c.FieldID)
		}
		groups[c.FieldID] = append(groups[c.FieldID], c.RawValue)
	}
	for _, fieldID := range order {
		v, ok := raw[fieldID]
		if !ok {
			return false
		}
		matched := false
		for _, want := range groups[fieldID] {
			if v == want {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
