// Package parquet writes decoded FIT messages to a columnar Parquet file
// for downstream analytics tooling. Unlike a fixed cycling-metrics table,
// the row schema here is message-agnostic: every message type (record,
// lap, session, event, ...) projects into the same columns, with its
// fully interpreted field set carried as a JSON blob column, since the
// field set varies by message type and by whatever profile was attached
// to the decode.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/fitdecode"
)

// Row is one decoded message projected into Parquet's columnar form.
type Row struct {
	RecordIndex      int64  `parquet:"name=record_index, type=INT64"`
	FileOffset       int64  `parquet:"name=file_offset, type=INT64"`
	MessageName      string `parquet:"name=message_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	GlobalMessageNum int32  `parquet:"name=global_message_num, type=INT32"`
	FieldsJSON       string `parquet:"name=fields_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ExportOptions controls export behavior. MessageNames, when non-empty,
// restricts the export to those message names (e.g. just "record"); a nil
// or empty slice exports every message in the file.
type ExportOptions struct {
	MessageNames []string
}

// ExportMessages projects decoded messages into Parquet rows and writes
// them to w using Snappy-compressed row groups.
func ExportMessages(w io.Writer, messages []*fit.DecodedMessage, opts ExportOptions) error {
	want := toSet(opts.MessageNames)

	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, msg := range messages {
		if len(want) > 0 {
			if _, ok := want[msg.Name]; !ok {
				continue
			}
		}

		fieldsJSON, err := marshalFields(msg)
		if err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("marshal fields for message %d: %w", i, err)
		}

		row := Row{
			RecordIndex:      int64(i),
			FileOffset:       int64(msg.StartPos),
			MessageName:      msg.Name,
			GlobalMessageNum: int32(msg.GlobalMesgNum),
			FieldsJSON:       fieldsJSON,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("flush parquet writer: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet buffer: %w", err)
	}
	_, err = w.Write(fw.Bytes())
	return err
}

// ExportFile decodes every message of a FIT file and writes it as Parquet
// to outputPath in one call.
func ExportFile(data []byte, cfg fit.DecoderConfig, outputPath string, opts ExportOptions) error {
	decoded, err := fit.Decode(data, cfg)
	if err != nil {
		return fmt.Errorf("decode fit file: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	return ExportMessages(f, decoded.All(), opts)
}

func marshalFields(msg *fit.DecodedMessage) (string, error) {
	out := make(map[string]any, len(msg.Fields))
	for _, name := range msg.FieldNames() {
		v, _ := msg.Get(name)
		out[name] = v.Value
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
