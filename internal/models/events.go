package models

// ExtractionCompleted is published after a transcript has been decoded
// and mapped.
type ExtractionCompleted struct {
	EventType   string `json:"eventType"`
	RequestID   string `json:"requestId"`
	Timestamp   int64  `json:"timestamp"`
	EntityCount int    `json:"entityCount"`
	Warnings    int    `json:"warnings"`
}

// CorrectionAccepted is published after a correction passed validation
// and was appended to the store.
type CorrectionAccepted struct {
	EventType  string  `json:"eventType"`
	Timestamp  int64   `json:"timestamp"`
	Author     *string `json:"author"`
	TokenCount int     `json:"tokenCount"`
	Warnings   int     `json:"warnings"`
}
