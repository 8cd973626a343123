// Package profileio loads a message/field profile from disk, in either
// JSON or TOML, into the in-memory schema catalog the decoder consults
// for field names, units, scaling, enum labels, and sub-field resolution.
package profileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lucasjlepore/fitdecode"
)

// Document is the on-disk shape of a profile file, before being installed
// into a fit.Profile. Field names mirror the wire format's own vocabulary
// (global_mesg_num, field_id, sub_fields, conditions) rather than Go
// naming, since profiles are hand-authored or generated from vendor CSVs.
type Document struct {
	Messages []MessageDoc       `json:"messages" toml:"messages"`
	Types    map[string]TypeDoc `json:"types" toml:"types"`
}

// MessageDoc describes one message's fields.
type MessageDoc struct {
	GlobalMesgNum uint16     `json:"global_mesg_num" toml:"global_mesg_num"`
	Name          string     `json:"name" toml:"name"`
	Fields        []FieldDoc `json:"fields" toml:"fields"`
}

// FieldDoc describes one field and its optional sub-fields.
type FieldDoc struct {
	FieldID       byte          `json:"field_id" toml:"field_id"`
	Name          string        `json:"name" toml:"name"`
	Type          string        `json:"type" toml:"type"`
	Units         string        `json:"units" toml:"units"`
	Scale         float64       `json:"scale" toml:"scale"`
	Offset        float64       `json:"offset" toml:"offset"`
	HasComponents bool          `json:"has_components" toml:"has_components"`
	SubFields     []SubFieldDoc `json:"sub_fields" toml:"sub_fields"`
}

// SubFieldDoc describes one conditional alternate interpretation.
type SubFieldDoc struct {
	Name       string          `json:"name" toml:"name"`
	Type       string          `json:"type" toml:"type"`
	Units      string          `json:"units" toml:"units"`
	Scale      float64         `json:"scale" toml:"scale"`
	Offset     float64         `json:"offset" toml:"offset"`
	Conditions []ConditionDoc `json:"conditions" toml:"conditions"`
}

// ConditionDoc references another field of the same message by id and the
// raw value it must equal.
type ConditionDoc struct {
	FieldID  byte  `json:"field_id" toml:"field_id"`
	RawValue int64 `json:"raw_value" toml:"raw_value"`
}

// TypeDoc is an enum table: raw integer value to label.
type TypeDoc map[string]string

// LoadConfig reads a profile document from path, inferring JSON vs TOML
// from the file extension (.json, or .toml/anything else), and installs
// it into a fresh fit.Profile.
func LoadConfig(path string) (*fit.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse profile %s as JSON: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse profile %s as TOML: %w", path, err)
		}
	}

	return Build(doc)
}

// Build installs a Document into a fresh fit.Profile, validating that no
// field declares a zero scale (a zero scale would make every scaled value
// divide by zero downstream, so it is rejected here rather than silently
// propagated to the decoder).
func Build(doc Document) (*fit.Profile, error) {
	profile := fit.NewProfile()

	for name, table := range doc.Types {
		enum := make(fit.EnumTable, len(table))
		for rawStr, label := range table {
			var raw int64
			if _, err := fmt.Sscanf(rawStr, "%d", &raw); err != nil {
				return nil, fmt.Errorf("type %s: invalid raw value key %q: %w", name, rawStr, err)
			}
			enum[raw] = label
		}
		profile.AddType(name, enum)
	}

	for _, m := range doc.Messages {
		rec := &MessageRecordBuilder{Name: m.Name}
		for _, fdoc := range m.Fields {
			if fdoc.Scale == 0 {
				return nil, fmt.Errorf("message %s field %s: scale must not be zero; set it to 1 for an unscaled field", m.Name, fdoc.Name)
			}
			fr := &fit.FieldRecord{
				Name:          fdoc.Name,
				Type:          fdoc.Type,
				Units:         fdoc.Units,
				Scale:         fdoc.Scale,
				Offset:        fdoc.Offset,
				HasComponents: fdoc.HasComponents,
			}
			for _, sdoc := range fdoc.SubFields {
				sf := fit.SubField{
					Name:   sdoc.Name,
					Type:   sdoc.Type,
					Units:  sdoc.Units,
					Scale:  sdoc.Scale,
					Offset: sdoc.Offset,
				}
				for _, cdoc := range sdoc.Conditions {
					sf.Conditions = append(sf.Conditions, fit.Condition{
						FieldID:  cdoc.FieldID,
						RawValue: cdoc.RawValue,
					})
				}
				fr.SubFields = append(fr.SubFields, sf)
			}
			rec.Fields = append(rec.Fields, fieldEntry{id: fdoc.FieldID, rec: fr})
		}
		profile.AddMessage(m.GlobalMesgNum, rec.Build())
	}

	return profile, nil
}

type fieldEntry struct {
	id  byte
	rec *fit.FieldRecord
}

// MessageRecordBuilder assembles a fit.MessageRecord one field at a time;
// it exists only to keep Build's loop free of direct map literals.
type MessageRecordBuilder struct {
	Name   string
	Fields []fieldEntry
}

// Build finalizes the accumulated fields into a fit.MessageRecord.
func (b *MessageRecordBuilder) Build() *fit.MessageRecord {
	rec := &fit.MessageRecord{Name: b.Name, Fields: make(map[byte]*fit.FieldRecord, len(b.Fields))}
	for _, f := range b.Fields {
		rec.Fields[f.id] = f.rec
	}
	return rec
}
