package fit

// DecodedField is one field's fully interpreted value together with its
// profile-declared unit, or an empty Unit when no profile was attached or
// the field carried none.
type DecodedField struct {
	Value any
	Unit  string
}

// DecodedMessage is one data message after the full value pipeline: its
// resolved name and its fields keyed by resolved name. Field iteration
// order follows FieldNames, the order fields were first set in (field
// declaration order in the source message, then developer fields).
type DecodedMessage struct {
	Name          string
	GlobalMesgNum uint16
	Fields        map[string]DecodedField
	order         []string

	// StartPos, HeaderByte, and Raw are byte-level provenance for this
	// message: the 1-based position of its record header byte, that
	// byte, and the complete record (header plus payload) it came from.
	StartPos   int
	HeaderByte byte
	Raw        []byte
}

func (m *DecodedMessage) set(name string, f DecodedField) {
	if _, exists := m.Fields[name]; !exists {
		m.order = append(m.order, name)
	}
	m.Fields[name] = f
}

// FieldNames returns field names in first-appearance order.
func (m *DecodedMessage) FieldNames() []string {
	return append([]string(nil), m.order...)
}

// Get returns a field's value by name and whether it was present.
func (m *DecodedMessage) Get(name string) (DecodedField, bool) {
	f, ok := m.Fields[name]
	return f, ok
}

// DecodedFile groups every decoded message of a file by message name, in
// the order each name was first seen.
type DecodedFile struct {
	Header   Header
	messages map[string][]*DecodedMessage
	order    []string
	flat     []*DecodedMessage
}

func newDecodedFile(header Header) *DecodedFile {
	return &DecodedFile{
		Header:   header,
		messages: make(map[string][]*DecodedMessage),
	}
}

func (f *DecodedFile) add(m *DecodedMessage) {
	if _, exists := f.messages[m.Name]; !exists {
		f.order = append(f.order, m.Name)
	}
	f.messages[m.Name] = append(f.messages[m.Name], m)
	f.flat = append(f.flat, m)
}

// MessageNames returns message names in first-appearance order.
func (f *DecodedFile) MessageNames() []string {
	return append([]string(nil), f.order...)
}

// Messages returns every decoded message recorded under name, in
// encounter order, or nil if name was never seen.
func (f *DecodedFile) Messages(name string) []*DecodedMessage {
	return f.messages[name]
}

// All returns every decoded message across the whole file, in the order
// they were decoded.
func (f *DecodedFile) All() []*DecodedMessage {
	return append([]*DecodedMessage(nil), f.flat...)
}
