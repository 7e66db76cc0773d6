package decode

import (
	"github.com/rs/zerolog/log"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// Input is one record of a batch decode request.
type Input struct {
	Tokens      []models.Token
	Tags        []string
	Confidences []float64
}

// ItemError pairs a failed batch record with its index.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string { return e.Err.Error() }

func (e ItemError) Unwrap() error { return e.Err }

// DecodeBatch decodes every record independently. A record that fails
// (shape mismatch, unknown tag) is reported in the error list and does
// not abort the rest of the batch; its slot in the results is nil.
func DecodeBatch(inputs []Input, scheme *labels.Scheme) ([][]models.Entity, []ItemError) {
	results := make([][]models.Entity, len(inputs))
	var errs []ItemError
	for i, in := range inputs {
		entities, err := Decode(in.Tokens, in.Tags, in.Confidences, scheme)
		if err != nil {
			log.Warn().Int("record", i).Err(err).Msg("batch decode: record skipped")
			errs = append(errs, ItemError{Index: i, Err: err})
			continue
		}
		results[i] = entities
	}
	return results, errs
}
