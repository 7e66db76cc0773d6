// Package decode turns per-token BIO tag sequences into entity spans.
//
// The decoder is a left-to-right state machine. Malformed sequences
// (an I- tag with no matching open span) are repaired by promotion:
// the orphan I- is treated as B- and starts a new span. Repair is a
// documented policy, never silent data loss, and never an error.
package decode

import (
	"errors"
	"fmt"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// Sentinel errors for errors.Is checks.
var (
	ErrShapeMismatch = errors.New("token/tag shape mismatch")
	ErrUnknownTag    = errors.New("unknown tag")
)

// ShapeMismatchError reports a tokens/tags length disagreement.
type ShapeMismatchError struct {
	Tokens int
	Tags   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %d tokens vs %d tags", e.Tokens, e.Tags)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// UnknownTagError reports a tag outside the label scheme vocabulary.
type UnknownTagError struct {
	Tag   string
	Index int
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag %q at index %d", e.Tag, e.Index)
}

func (e *UnknownTagError) Unwrap() error { return ErrUnknownTag }

// Decode scans tags left to right and emits one entity per maximal
// span. confidences may be nil, in which case every token counts as
// 1.0 (human-authored tags). Entity confidence is the minimum over the
// span's tokens.
//
// Decoding fails only on shape mismatch or a tag outside scheme's
// vocabulary. Malformed BIO transitions are repaired, not rejected.
func Decode(tokens []models.Token, tags []string, confidences []float64, scheme *labels.Scheme) ([]models.Entity, error) {
	if len(tokens) != len(tags) {
		return nil, &ShapeMismatchError{Tokens: len(tokens), Tags: len(tags)}
	}
	if confidences != nil && len(confidences) != len(tokens) {
		return nil, &ShapeMismatchError{Tokens: len(tokens), Tags: len(confidences)}
	}
	for i, tag := range tags {
		if !scheme.ValidTag(tag) {
			return nil, &UnknownTagError{Tag: tag, Index: i}
		}
	}

	conf := func(i int) float64 {
		if confidences == nil {
			return 1.0
		}
		return confidences[i]
	}

	var entities []models.Entity
	openType := ""
	spanStart := -1 // token index of the open span, -1 when closed

	closeSpan := func(end int) {
		if spanStart < 0 {
			return
		}
		e := models.Entity{
			Type:       openType,
			Start:      tokens[spanStart].Start,
			End:        tokens[end-1].End,
			Confidence: conf(spanStart),
		}
		for i := spanStart; i < end; i++ {
			if c := conf(i); c < e.Confidence {
				e.Confidence = c
			}
		}
		e.Text = joinTokens(tokens[spanStart:end])
		entities = append(entities, e)
		openType = ""
		spanStart = -1
	}

	for i, tag := range tags {
		prefix, entityType := labels.TagType(tag)
		switch prefix {
		case labels.Outside:
			closeSpan(i)
		case "B":
			closeSpan(i)
			openType = entityType
			spanStart = i
		case "I":
			if spanStart >= 0 && openType == entityType {
				continue // extend the open span
			}
			// Orphan I-: promote to B- and open a new span.
			closeSpan(i)
			openType = entityType
			spanStart = i
		}
	}
	closeSpan(len(tags))
	return entities, nil
}

// joinTokens reconstructs span text from token texts, space separated.
// Offsets still reference the original source; the joined text is the
// canonical span surface used by the mapper.
func joinTokens(tokens []models.Token) string {
	if len(tokens) == 1 {
		return tokens[0].Text
	}
	n := 0
	for _, t := range tokens {
		n += len(t.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, t := range tokens {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, t.Text...)
	}
	return string(buf)
}

// Encode reverses decoding: it projects entities back onto the token
// sequence as BIO tags. Tokens not covered by any entity get O. An
// entity covers a token when their character ranges overlap.
func Encode(tokens []models.Token, entities []models.Entity) []string {
	tags := make([]string, len(tokens))
	for i := range tags {
		tags[i] = labels.Outside
	}
	for _, e := range entities {
		first := true
		for i, tok := range tokens {
			if tok.Start >= e.End || tok.End <= e.Start {
				continue
			}
			if first {
				tags[i] = "B-" + e.Type
				first = false
			} else {
				tags[i] = "I-" + e.Type
			}
		}
	}
	return tags
}
