// Package models defines the data structures shared across the extraction pipeline.
package models

// Token is a single token of the source transcript with half-open
// character offsets into the original text. Tokens are produced by the
// external tokenizer and are immutable once decoded.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// RawPrediction is one token-level prediction from the external
// token-classification model: the token, its BIO tag, and the model's
// confidence in [0,1]. Confidence defaults to 1.0 for human-authored tags.
type RawPrediction struct {
	Token      Token   `json:"token"`
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// Entity is a maximal run of tokens sharing one type under BIO
// semantics. Start/End span the first and last constituent token.
// Confidence is the minimum of the constituent token confidences, so a
// single low-confidence token taints the whole span.
type Entity struct {
	Type       string  `json:"type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
