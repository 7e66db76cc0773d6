package corrections

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"or-extraction-service/internal/corpus"
	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// MergedResult is the outcome of folding corrections into a base corpus.
type MergedResult struct {
	Examples       []models.TrainingExample `json:"-"`
	AddedCount     int                      `json:"added"`
	DuplicateCount int                      `json:"duplicates"`
}

// Merge appends corrections to the base corpus. With dedupe on, a
// correction whose exact (tokens, tags) pair already occurs in the
// base — or in an earlier correction of the same run — is counted as a
// duplicate and excluded, which makes repeated merges idempotent.
// The base slice is never mutated; order is base first, then accepted
// corrections in submission order.
func Merge(base []models.TrainingExample, records []models.CorrectionRecord, dedupe bool) MergedResult {
	out := make([]models.TrainingExample, 0, len(base)+len(records))
	out = append(out, base...)

	var seen map[string]struct{}
	if dedupe {
		seen = make(map[string]struct{}, len(base)+len(records))
		for _, ex := range base {
			seen[dedupeKey(ex)] = struct{}{}
		}
	}

	res := MergedResult{}
	for _, rec := range records {
		ex := rec.TrainingExample
		if dedupe {
			key := dedupeKey(ex)
			if _, dup := seen[key]; dup {
				res.DuplicateCount++
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, ex)
		res.AddedCount++
	}
	res.Examples = out

	log.Info().Int("base", len(base)).Int("corrections", len(records)).
		Int("added", res.AddedCount).Int("duplicates", res.DuplicateCount).
		Bool("dedupe", dedupe).Msg("corrections merged")
	return res
}

// dedupeKey is the canonical JSON of the (tokens, tags) pair.
// Order-sensitive by construction; metadata never participates.
func dedupeKey(ex models.TrainingExample) string {
	data, err := json.Marshal(ex)
	if err != nil {
		// TrainingExample is plain strings; Marshal cannot fail.
		panic(err)
	}
	return string(data)
}

// MergeFiles loads the base corpus and correction store from disk,
// merges them, and writes the result to outPath. The base file is
// never rewritten: the merged corpus is always a fresh output, keeping
// the original as an immutable audit trail. Callers running merges
// concurrently should pass uniquely named outPaths; idempotence makes
// re-running after a partial failure safe.
func MergeFiles(basePath, correctionsPath, outPath string, dedupe bool, scheme *labels.Scheme) (MergedResult, error) {
	if outPath == basePath {
		return MergedResult{}, fmt.Errorf("merge output must not overwrite the base corpus %s", basePath)
	}

	base, lineErrs, err := corpus.Load(basePath, scheme)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return MergedResult{}, fmt.Errorf("load base corpus: %w", err)
		}
		// No base corpus yet: merge starts from the corrections alone.
		base = nil
	}
	for _, le := range lineErrs {
		log.Warn().Str("path", basePath).Err(le).Msg("base corpus line skipped")
	}

	store := NewStore(correctionsPath, scheme)
	records, recErrs, err := store.Load()
	if err != nil {
		return MergedResult{}, fmt.Errorf("load corrections: %w", err)
	}
	for _, re := range recErrs {
		log.Warn().Str("path", correctionsPath).Err(re).Msg("correction line skipped")
	}

	res := Merge(base, records, dedupe)
	if err := corpus.Save(outPath, res.Examples); err != nil {
		return res, fmt.Errorf("write merged corpus: %w", err)
	}
	return res, nil
}
