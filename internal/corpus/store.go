// Package corpus reads and writes the line-oriented training corpus.
// Each line is an independently parseable {"tokens": […], "tags": […]}
// record; a bad line is skipped with a reported error and never aborts
// loading the rest of the file.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// LineError reports a skipped corpus line (1-based line number).
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// Load reads examples from a JSONL file. Lines that fail to parse,
// have mismatched tokens/tags lengths, or carry tags outside the
// scheme are skipped and reported. I/O failure on open is fatal.
func Load(path string, scheme *labels.Scheme) ([]models.TrainingExample, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	var (
		examples []models.TrainingExample
		lineErrs []LineError
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ex models.TrainingExample
		if err := json.Unmarshal(line, &ex); err != nil {
			lineErrs = append(lineErrs, LineError{Line: lineNo, Err: fmt.Errorf("parse: %w", err)})
			continue
		}
		if err := checkShape(ex, scheme); err != nil {
			lineErrs = append(lineErrs, LineError{Line: lineNo, Err: err})
			continue
		}
		examples = append(examples, ex)
	}
	if err := sc.Err(); err != nil {
		return examples, lineErrs, fmt.Errorf("read corpus %s: %w", path, err)
	}
	if len(lineErrs) > 0 {
		log.Warn().Str("path", path).Int("skipped", len(lineErrs)).Int("loaded", len(examples)).
			Msg("corpus loaded with skipped lines")
	} else {
		log.Debug().Str("path", path).Int("loaded", len(examples)).Msg("corpus loaded")
	}
	return examples, lineErrs, nil
}

// checkShape enforces the store invariants: length parity and tags
// within the scheme vocabulary. The store rejects violations rather
// than repairing them; BIO transition anomalies are left to the
// decoder's repair policy.
func checkShape(ex models.TrainingExample, scheme *labels.Scheme) error {
	if len(ex.Tokens) != len(ex.Tags) {
		return fmt.Errorf("length mismatch: %d tokens vs %d tags", len(ex.Tokens), len(ex.Tags))
	}
	for i, tag := range ex.Tags {
		if !scheme.ValidTag(tag) {
			return fmt.Errorf("unknown tag %q at index %d", tag, i)
		}
	}
	return nil
}

// Save writes examples as JSONL via a temp file and rename, so readers
// never observe a half-written corpus.
func Save(path string, examples []models.TrainingExample) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create corpus dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp corpus file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, ex := range examples {
		data, err := json.Marshal(ex)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("marshal example: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return fmt.Errorf("write corpus: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename corpus into place: %w", err)
	}
	log.Info().Str("path", path).Int("records", len(examples)).Msg("corpus saved")
	return nil
}
