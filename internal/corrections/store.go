package corrections

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// ErrRejected marks a correction that failed validation; it is
// reported to the submitter and never written to the store.
var ErrRejected = errors.New("correction rejected by validation")

// RejectedError carries the validation issues back to the submitter.
type RejectedError struct {
	Result Result
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("correction rejected: %d issue(s)", len(e.Result.Issues))
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Store is the append-only correction log. Appends are serialized
// through an advisory file lock so two concurrent submissions cannot
// interleave inside one record.
type Store struct {
	path   string
	lock   *flock.Flock
	scheme *labels.Scheme
}

// NewStore creates a store over the given JSONL file. The lock file
// lives next to the data file.
func NewStore(path string, scheme *labels.Scheme) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		scheme: scheme,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append validates the correction and appends it as one JSONL line.
// A missing timestamp is filled with the current UTC time. Validation
// failure returns a RejectedError and writes nothing.
func (s *Store) Append(rec models.CorrectionRecord) (Result, error) {
	res := Validate(rec.TrainingExample, s.scheme)
	if !res.Valid {
		log.Warn().Int("issues", len(res.Issues)).Msg("correction rejected")
		return res, &RejectedError{Result: res}
	}
	if rec.Metadata.Timestamp == "" {
		rec.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return res, fmt.Errorf("marshal correction: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return res, fmt.Errorf("create corrections dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return res, fmt.Errorf("acquire corrections lock: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("failed to release corrections lock")
		}
	}()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return res, fmt.Errorf("open corrections store: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return res, fmt.Errorf("append correction: %w", err)
	}
	log.Info().Str("path", s.path).Int("tokens", len(rec.Tokens)).Msg("correction stored")
	return res, nil
}

// Load reads all corrections with the same per-line isolation as the
// training corpus: a bad line is reported and skipped, never fatal.
func (s *Store) Load() ([]models.CorrectionRecord, []error, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("open corrections store %s: %w", s.path, err)
	}
	defer f.Close()

	var (
		records  []models.CorrectionRecord
		lineErrs []error
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
		var rec models.CorrectionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			lineErrs = append(lineErrs, fmt.Errorf("line %d: parse: %w", lineNo, err))
			continue
		}
		if len(rec.Tokens) != len(rec.Tags) {
			lineErrs = append(lineErrs, fmt.Errorf("line %d: length mismatch: %d tokens vs %d tags",
				lineNo, len(rec.Tokens), len(rec.Tags)))
			continue
		}
		if tag, idx, ok := firstUnknownTag(rec.Tags, s.scheme); !ok {
			lineErrs = append(lineErrs, fmt.Errorf("line %d: unknown tag %q at index %d", lineNo, tag, idx))
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, lineErrs, fmt.Errorf("read corrections store %s: %w", s.path, err)
	}
	return records, lineErrs, nil
}

// firstUnknownTag reports the first tag outside the scheme vocabulary.
// The store enforces the same shape invariants as the training corpus:
// a line that violates them is skipped, never merged downstream.
func firstUnknownTag(tags []string, scheme *labels.Scheme) (string, int, bool) {
	for i, tag := range tags {
		if !scheme.ValidTag(tag) {
			return tag, i, false
		}
	}
	return "", 0, true
}
