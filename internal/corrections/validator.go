// Package corrections manages human-edited training examples: the
// validator that gates them, the append-only store that holds them,
// and the merger that folds them back into the training corpus.
package corrections

import (
	"fmt"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// Issue severity levels. Warnings surface anomalies to the human
// without blocking storage; errors make the correction invalid.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Result is the outcome of validating a correction. Valid is false
// only when error-level issues are present; BIO-shape anomalies alone
// keep a correction valid.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Validate runs all checks independently and collects every issue
// rather than stopping at the first failure:
//
//  1. tokens/tags length parity (error)
//  2. every tag within the scheme vocabulary (error, one per tag)
//  3. BIO well-formedness: an I- tag with no matching open span
//     (warning only — the decoder's promotion policy would repair it
//     downstream; the validator's job is to surface it to the human)
func Validate(ex models.TrainingExample, scheme *labels.Scheme) Result {
	var issues []Issue

	if len(ex.Tokens) != len(ex.Tags) {
		issues = append(issues, Issue{
			Level:   LevelError,
			Message: fmt.Sprintf("length mismatch: %d tokens vs %d tags", len(ex.Tokens), len(ex.Tags)),
		})
	}

	for i, tag := range ex.Tags {
		if !scheme.ValidTag(tag) {
			issues = append(issues, Issue{
				Level:   LevelError,
				Message: fmt.Sprintf("unknown tag %q at index %d", tag, i),
			})
		}
	}

	issues = append(issues, bioAnomalies(ex.Tags, scheme)...)

	valid := true
	for _, is := range issues {
		if is.Level == LevelError {
			valid = false
			break
		}
	}
	return Result{Valid: valid, Issues: issues}
}

// bioAnomalies flags orphan I- tags: an I-<T> at the start of the
// sequence, directly after O, or after a span of a different type.
func bioAnomalies(tags []string, scheme *labels.Scheme) []Issue {
	var issues []Issue
	prevType := ""
	for i, tag := range tags {
		if !scheme.ValidTag(tag) {
			prevType = ""
			continue
		}
		prefix, entityType := labels.TagType(tag)
		if prefix == "I" && entityType != prevType {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				Message: fmt.Sprintf("orphan %s at index %d: no preceding span of type %s", tag, i, entityType),
			})
		}
		if prefix == labels.Outside {
			prevType = ""
		} else {
			prevType = entityType
		}
	}
	return issues
}
