package jsonl

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasjlepore/fitdecode"
)

// ExportFile decodes a FIT file and writes a lossless export bundle to
// outputDir: manifest.json, records.jsonl, and (optionally) a copy of the
// source file. profile may be nil, in which case fields decode under
// their numeric field ids instead of profile-resolved names.
func ExportFile(inputPath, outputDir string, profile *fit.Profile, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	sum := sha256.Sum256(data)
	sha := hex.EncodeToString(sum[:])

	cfg := fit.DefaultConfig()
	cfg.Profile = profile
	cfg.Tolerant = opts.Tolerant

	f, err := fit.NewFile(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("open fit file: %w", err)
	}

	var records []RecordEnvelope
	recordIndex := 0
	for {
		msg, err := f.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode message %d: %w", recordIndex, err)
		}
		recordIndex++
		records = append(records, toRecordEnvelope(recordIndex, msg))
	}

	fileCRCValid := f.VerifyCRC() == nil

	if err := ensureOutputDir(outputDir, opts.Overwrite); err != nil {
		return nil, err
	}

	recordsPath := filepath.Join(outputDir, "records.jsonl")
	if err := writeJSONL(recordsPath, records); err != nil {
		return nil, fmt.Errorf("write records.jsonl: %w", err)
	}

	manifest := Manifest{
		FormatVersion:   ExportFormatVersion,
		GeneratedAt:     time.Now().UTC(),
		SourceFile:      inputPath,
		SourceFileName:  filepath.Base(inputPath),
		SourceSHA256:    sha,
		SourceSizeBytes: int64(len(data)),
		Header: HeaderInfo{
			Size:            f.Header.Size,
			ProtocolVersion: f.Header.ProtocolVersion,
			ProfileVersion:  f.Header.ProfileVersion,
			DataSize:        f.Header.DataSize,
		},
		FileCRCValid: fileCRCValid,
		RecordsPath:  filepath.Base(recordsPath),
		RecordCount:  len(records),
		MessageNames: messageNameSet(records),
		Schema: SchemaDetails{
			RecordType: "JSONL line-per-message preserving original stream order and byte offsets",
			Notes: []string{
				"Every message's fields are fully interpreted when a profile is attached; raw field ids otherwise.",
				"file_offset and header_byte locate the source bytes of each record for cross-referencing raw_record_hex.",
				"Developer fields are preserved as raw byte arrays under their field number.",
			},
		},
	}

	manifestPath := filepath.Join(outputDir, "manifest.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySourceFile {
		sourceCopyPath = filepath.Join(outputDir, "source.fit")
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source fit file: %w", err)
		}
	}

	return &ExportResult{
		OutputDir:       outputDir,
		ManifestPath:    manifestPath,
		RecordsPath:     recordsPath,
		SourceCopyPath:  sourceCopyPath,
		RecordCount:     len(records),
		SourceSHA256:    sha,
		SourceSizeBytes: int64(len(data)),
		FileCRCValid:    fileCRCValid,
	}, nil
}

func toRecordEnvelope(recordIndex int, msg *fit.DecodedMessage) RecordEnvelope {
	fields := make(map[string]FieldOut, len(msg.Fields))
	for _, name := range msg.FieldNames() {
		v, _ := msg.Get(name)
		fields[name] = FieldOut{Value: v.Value, Unit: v.Unit}
	}
	return RecordEnvelope{
		FormatVersion:    ExportFormatVersion,
		RecordIndex:      recordIndex,
		FileOffset:       msg.StartPos,
		HeaderByte:       msg.HeaderByte,
		MessageName:      msg.Name,
		GlobalMessageNum: msg.GlobalMesgNum,
		Fields:           fields,
		RawRecordHex:     hex.EncodeToString(msg.Raw),
	}
}

func messageNameSet(records []RecordEnvelope) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.MessageName]; ok {
			continue
		}
		seen[r.MessageName] = struct{}{}
		out = append(out, r.MessageName)
	}
	return out
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONL(path string, records []RecordEnvelope) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriterSize(f, 1<<20)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
