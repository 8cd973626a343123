// Command fitdump decodes a FIT file and writes it out as a JSONL export
// bundle, a Parquet file, or a quick human-readable summary to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/fitdecode"
	"github.com/lucasjlepore/fitdecode/export/jsonl"
	"github.com/lucasjlepore/fitdecode/export/parquet"
	"github.com/lucasjlepore/fitdecode/profileio"
)

func main() {
	var (
		format        = flag.String("format", "summary", "Output format: summary, jsonl, or parquet")
		outDir        = flag.String("out-dir", "", "Output directory for jsonl export (defaults to ./exports/<name>_fitdecode_jsonl_v1)")
		outFile       = flag.String("out-file", "", "Output file for parquet export (defaults to <name>.parquet)")
		overwrite     = flag.Bool("overwrite", true, "Allow writing to a non-empty jsonl output directory")
		copySource    = flag.Bool("copy-source", true, "Copy the original FIT file into the jsonl export directory as source.fit")
		tolerant      = flag.Bool("tolerant", false, "Skip compressed timestamp messages instead of failing the decode")
		profilePath   = flag.String("profile", "", "Path to a profile document (.json or .toml) for field/message name resolution")
		messageFilter = flag.String("messages", "", "Comma-separated message names to include in parquet export (default: all)")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	var profile *fit.Profile
	if strings.TrimSpace(*profilePath) != "" {
		p, err := profileio.LoadConfig(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load profile failed: %v\n", err)
			os.Exit(1)
		}
		profile = p
	}

	switch *format {
	case "summary":
		if err := runSummary(inputPath, profile, *tolerant); err != nil {
			fmt.Fprintf(os.Stderr, "summary failed: %v\n", err)
			os.Exit(1)
		}
	case "jsonl":
		if strings.TrimSpace(*outDir) == "" {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			*outDir = filepath.Join(".", "exports", base+"_"+jsonl.ExportFormatVersion)
		}
		result, err := jsonl.ExportFile(inputPath, *outDir, profile, jsonl.ExportOptions{
			Overwrite:      *overwrite,
			CopySourceFile: *copySource,
			Tolerant:       *tolerant,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "jsonl export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Output dir: %s\n", result.OutputDir)
		fmt.Printf("Manifest:   %s\n", result.ManifestPath)
		fmt.Printf("Records:    %s (%d messages)\n", result.RecordsPath, result.RecordCount)
		fmt.Printf("CRC valid:  file=%t\n", result.FileCRCValid)
	case "parquet":
		if strings.TrimSpace(*outFile) == "" {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			*outFile = base + ".parquet"
		}
		data, err := os.ReadFile(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read fit file failed: %v\n", err)
			os.Exit(1)
		}
		cfg := fit.DefaultConfig()
		cfg.Profile = profile
		cfg.Tolerant = *tolerant
		var names []string
		if strings.TrimSpace(*messageFilter) != "" {
			names = strings.Split(*messageFilter, ",")
		}
		if err := parquet.ExportFile(data, cfg, *outFile, parquet.ExportOptions{MessageNames: names}); err != nil {
			fmt.Fprintf(os.Stderr, "parquet export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *outFile)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (want summary, jsonl, or parquet)\n", *format)
		os.Exit(2)
	}
}

func runSummary(inputPath string, profile *fit.Profile, tolerant bool) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read fit file: %w", err)
	}

	header, err := fit.DecodeHeader(data)
	if err != nil {
		return fmt.Errorf("decode header: %w", err)
	}
	fmt.Printf("Header: size=%d protocol=%d profile=%d data_size=%d\n",
		header.Size, header.ProtocolVersion, header.ProfileVersion, header.DataSize)

	cfg := fit.DefaultConfig()
	cfg.Profile = profile
	cfg.Tolerant = tolerant

	decoded, err := fit.Decode(data, cfg)
	if err != nil {
		return fmt.Errorf("decode file: %w", err)
	}

	counts := make(map[string]int)
	for _, msg := range decoded.All() {
		counts[msg.Name]++
	}
	fmt.Printf("Messages: %d total\n", len(decoded.All()))
	for _, name := range decoded.MessageNames() {
		fmt.Printf("  %-24s %d\n", name, counts[name])
	}
	return nil
}
