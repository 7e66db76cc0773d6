// correctionsctl manages the correction store from the command line:
// validate the stored corrections, analyze tag patterns, merge them
// into the training corpus, or export a full report.
package main

import (
	"flag"
	"fmt"
	"os"

	"or-extraction-service/internal/corrections"
	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/observability/logging"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: correctionsctl <command> [flags]

Commands:
  validate   re-validate stored corrections against the label scheme
  analyze    print correction statistics (authors, tag frequencies)
  merge      merge corrections into the training corpus (writes a new file)
  report     export a combined analysis + validation report as JSON

Common flags:
  -corrections path   correction store file (default data/labels/corrections.jsonl)
  -scheme path        label scheme JSON file (default: built-in OR scheme)
  -v                  verbose logging
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	correctionsPath := fs.String("corrections", "data/labels/corrections.jsonl", "correction store file")
	schemePath := fs.String("scheme", "", "label scheme JSON file (empty for built-in)")
	trainPath := fs.String("train", "data/labels/train.jsonl", "base training corpus (merge)")
	outPath := fs.String("out", "", "output file (merge: merged corpus, report: JSON report)")
	dedupe := fs.Bool("dedupe", true, "exclude duplicate (tokens, tags) records (merge)")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Format = "console"
	logCfg.Level = "warn"
	if *verbose {
		logCfg.Level = "debug"
	}
	logging.Init(logCfg)

	scheme := labels.Default()
	if *schemePath != "" {
		var err error
		scheme, err = labels.Load(*schemePath)
		if err != nil {
			fatalf("load label scheme: %v", err)
		}
	}

	store := corrections.NewStore(*correctionsPath, scheme)

	switch command {
	case "validate":
		records, lineErrs, err := store.Load()
		if err != nil {
			fatalf("load corrections: %v", err)
		}
		for _, le := range lineErrs {
			fmt.Fprintf(os.Stderr, "skipped: %v\n", le)
		}
		stats := corrections.ValidateAll(records, scheme)
		fmt.Printf("valid records: %d/%d\n", stats.ValidRecords, stats.TotalRecords)
		for _, issue := range stats.Issues {
			fmt.Printf("  %s\n", issue)
		}
		if stats.ValidRecords != stats.TotalRecords {
			os.Exit(1)
		}

	case "analyze":
		records, _, err := store.Load()
		if err != nil {
			fatalf("load corrections: %v", err)
		}
		report := corrections.Analyze(records)
		fmt.Printf("total correction records: %d\n", report.TotalRecords)
		fmt.Printf("unique authors: %v\n", report.UniqueAuthors)
		fmt.Println("most common tags:")
		for _, tc := range report.MostCommonTags {
			fmt.Printf("  %-20s %d\n", tc.Tag, tc.Count)
		}

	case "merge":
		if *outPath == "" {
			*outPath = "data/labels/train_corrected.jsonl"
		}
		res, err := corrections.MergeFiles(*trainPath, *correctionsPath, *outPath, *dedupe, scheme)
		if err != nil {
			fatalf("merge: %v", err)
		}
		fmt.Printf("merged corpus written to %s\n", *outPath)
		fmt.Printf("total: %d, added: %d, duplicates: %d\n",
			len(res.Examples), res.AddedCount, res.DuplicateCount)

	case "report":
		if *outPath == "" {
			*outPath = "corrections_report.json"
		}
		report, err := corrections.ExportReport(*correctionsPath, *outPath, scheme)
		if err != nil {
			fatalf("report: %v", err)
		}
		fmt.Printf("report written to %s (records: %d, valid: %d)\n",
			*outPath, report.Analysis.TotalRecords, report.Validation.ValidRecords)

	default:
		usage()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
