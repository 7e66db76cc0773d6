// Package labels holds the entity label scheme and its derived BIO tag
// vocabulary. A Scheme is loaded once at startup, is immutable
// afterwards, and is safe to share across goroutines.
package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Outside is the tag assigned to tokens that belong to no entity.
const Outside = "O"

// Scheme is an ordered registry of entity type names. The full tag
// vocabulary (O plus B-/I- per type) is derived, not stored.
type Scheme struct {
	types []string
	tags  map[string]struct{}
}

// New builds a scheme from an ordered list of entity type names.
func New(types []string) (*Scheme, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("label scheme requires at least one entity type")
	}
	s := &Scheme{
		types: make([]string, 0, len(types)),
		tags:  make(map[string]struct{}, 2*len(types)+1),
	}
	s.tags[Outside] = struct{}{}
	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, fmt.Errorf("label scheme contains an empty type name")
		}
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("label scheme contains duplicate type %q", t)
		}
		seen[t] = struct{}{}
		s.types = append(s.types, t)
		s.tags["B-"+t] = struct{}{}
		s.tags["I-"+t] = struct{}{}
	}
	return s, nil
}

// Load reads a JSON array of entity type names from path.
func Load(path string) (*Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label scheme %s: %w", path, err)
	}
	var types []string
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("parse label scheme %s: %w", path, err)
	}
	return New(types)
}

// Default returns the operating-room form label scheme.
func Default() *Scheme {
	s, err := New([]string{
		"DATE",
		"TIME_IN", "TIME_OUT", "TIME_INDUCTION", "TIME_CUTTING", "TIME_END", "TIME_DRESSING",
		"PERSON_SURGEON", "PERSON_ANESTHETIST", "PERSON_SCRUB", "PERSON_CIRC", "PERSON_TECH",
		"DIAG_PRE", "DIAG_POST",
		"OP_NAME", "OP_CODE",
		"BP_SYS", "BP_DIA", "HR", "SPO2",
		"ANES_TYPE", "POSITION",
		"DEVICE", "SPECIMEN", "CONDITION",
		"DRUG", "DOSE", "UNIT",
	})
	if err != nil {
		panic(err) // static type list, cannot fail
	}
	return s
}

// Types returns the entity type names in registration order.
func (s *Scheme) Types() []string {
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// Tags returns the derived tag vocabulary: O first, then B-/I- pairs
// in type registration order.
func (s *Scheme) Tags() []string {
	out := make([]string, 0, 2*len(s.types)+1)
	out = append(out, Outside)
	for _, t := range s.types {
		out = append(out, "B-"+t, "I-"+t)
	}
	return out
}

// ValidTag reports whether tag is in the derived vocabulary.
func (s *Scheme) ValidTag(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// ValidType reports whether t is a registered entity type.
func (s *Scheme) ValidType(t string) bool {
	_, ok := s.tags["B-"+t]
	return ok
}

// TagType splits a tag into its BIO prefix ("B", "I" or "O") and
// entity type. The type is empty for O.
func TagType(tag string) (prefix, entityType string) {
	switch {
	case tag == Outside:
		return Outside, ""
	case strings.HasPrefix(tag, "B-"):
		return "B", tag[2:]
	case strings.HasPrefix(tag, "I-"):
		return "I", tag[2:]
	default:
		return "", tag
	}
}
