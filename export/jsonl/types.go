// Package jsonl writes a decoded FIT file to a lossless, line-delimited
// JSON bundle suitable for downstream text-oriented tooling: one manifest
// describing the source file and header, and one records.jsonl line per
// decoded message, in original stream order with byte-offset provenance.
package jsonl

import "time"

// ExportFormatVersion identifies the on-disk schema written by ExportFile.
const ExportFormatVersion = "fitdecode_jsonl_v1"

// ExportOptions controls export behavior.
type ExportOptions struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// CopySourceFile writes a byte-for-byte copy of the source FIT file
	// alongside the export.
	CopySourceFile bool

	// Tolerant makes compressed-timestamp messages skip instead of
	// aborting the whole export; see fit.DecoderConfig.Tolerant.
	Tolerant bool
}

// ExportResult describes the files ExportFile produced.
type ExportResult struct {
	OutputDir       string `json:"output_dir"`
	ManifestPath    string `json:"manifest_path"`
	RecordsPath     string `json:"records_path"`
	SourceCopyPath  string `json:"source_copy_path,omitempty"`
	RecordCount     int    `json:"record_count"`
	SourceSHA256    string `json:"source_sha256"`
	SourceSizeBytes int64  `json:"source_size_bytes"`
	FileCRCValid    bool   `json:"file_crc_valid"`
}

// Manifest captures export metadata and pointers to the exported files.
type Manifest struct {
	FormatVersion   string        `json:"format_version"`
	GeneratedAt     time.Time     `json:"generated_at"`
	SourceFile      string        `json:"source_file"`
	SourceFileName  string        `json:"source_file_name"`
	SourceSHA256    string        `json:"source_sha256"`
	SourceSizeBytes int64         `json:"source_size_bytes"`
	Header          HeaderInfo    `json:"header"`
	FileCRCValid    bool          `json:"file_crc_valid"`
	RecordsPath     string        `json:"records_path"`
	RecordCount     int           `json:"record_count"`
	MessageNames    []string      `json:"message_names"`
	Schema          SchemaDetails `json:"schema_description"`
}

// SchemaDetails documents the record shape for downstream consumers.
type SchemaDetails struct {
	RecordType string   `json:"record_type"`
	Notes      []string `json:"notes"`
}

// HeaderInfo stores parsed FIT header values.
type HeaderInfo struct {
	Size            uint8  `json:"size"`
	ProtocolVersion uint8  `json:"protocol_version"`
	ProfileVersion  uint16 `json:"profile_version"`
	DataSize        uint32 `json:"data_size"`
}

// RecordEnvelope is one JSONL line in records.jsonl, preserving the
// original message stream order.
type RecordEnvelope struct {
	FormatVersion    string              `json:"format_version"`
	RecordIndex      int                 `json:"record_index"`
	FileOffset       int                 `json:"file_offset"`
	HeaderByte       uint8               `json:"header_byte"`
	MessageName      string              `json:"message_name"`
	GlobalMessageNum uint16              `json:"global_message_num"`
	Fields           map[string]FieldOut `json:"fields"`
	RawRecordHex     string              `json:"raw_record_hex"`
}

// FieldOut is one field's fully interpreted value and unit.
type FieldOut struct {
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}
