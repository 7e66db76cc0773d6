package models

// TrainingExample is one record of the training corpus: a token
// sequence and its aligned BIO tag sequence. Records with mismatched
// lengths or tags outside the label scheme are rejected by the stores,
// never repaired.
type TrainingExample struct {
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
}

// Equal reports whether two examples carry the exact same (tokens, tags)
// pair. This is the identity used for deduplication; metadata never
// participates.
func (e TrainingExample) Equal(other TrainingExample) bool {
	if len(e.Tokens) != len(other.Tokens) || len(e.Tags) != len(other.Tags) {
		return false
	}
	for i := range e.Tokens {
		if e.Tokens[i] != other.Tokens[i] {
			return false
		}
	}
	for i := range e.Tags {
		if e.Tags[i] != other.Tags[i] {
			return false
		}
	}
	return true
}

// CorrectionMeta carries provenance for a stored correction.
type CorrectionMeta struct {
	Timestamp string  `json:"timestamp"`
	Author    *string `json:"author"`
}

// CorrectionRecord is a human-edited training example plus provenance
// metadata. Immutable once stored.
type CorrectionRecord struct {
	TrainingExample
	Metadata CorrectionMeta `json:"metadata"`
}
