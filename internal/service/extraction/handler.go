// Package extraction coordinates the prediction, decoding and mapping
// stages into one pipeline and publishes the outcome.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"or-extraction-service/internal/decode"
	"or-extraction-service/internal/events"
	"or-extraction-service/internal/form"
	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
	"or-extraction-service/internal/observability/logging"
	"or-extraction-service/internal/observability/metrics"
	"or-extraction-service/internal/predict"
)

// Result is the outcome of one extraction call.
type Result struct {
	Entities []models.Entity `json:"entities"`
	Record   *form.Record    `json:"record"`
	Warnings []form.Warning  `json:"warnings"`
}

// Handler owns the pipeline dependencies for extraction requests.
// Each call operates on its own input only; the handler holds no
// per-call mutable state and is safe for concurrent use.
type Handler struct {
	predictor  predict.Predictor
	scheme     *labels.Scheme
	publisher  *events.Publisher
	metrics    *metrics.Metrics
	requestSeq atomic.Uint64
}

// NewHandler creates an extraction handler.
func NewHandler(predictor predict.Predictor, scheme *labels.Scheme, publisher *events.Publisher) *Handler {
	return &Handler{
		predictor: predictor,
		scheme:    scheme,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
	}
}

// Extract runs the full pipeline on a raw transcript: predict token
// tags, decode them into entity spans, map the spans into the form
// record.
func (h *Handler) Extract(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	preds, err := h.predictor.Predict(ctx, text)
	if err != nil {
		h.metrics.RecordExtraction(err, time.Since(start).Seconds())
		return nil, fmt.Errorf("predict: %w", err)
	}

	tokens := make([]models.Token, len(preds))
	tags := make([]string, len(preds))
	confidences := make([]float64, len(preds))
	for i, p := range preds {
		tokens[i] = p.Token
		tags[i] = p.Tag
		confidences[i] = p.Confidence
	}

	res, err := h.run(ctx, tokens, tags, confidences, text)
	h.metrics.RecordExtraction(err, time.Since(start).Seconds())
	return res, err
}

// ExtractPredictions runs decode and map on externally supplied
// predictions, bypassing the predictor. confidences may be nil.
func (h *Handler) ExtractPredictions(ctx context.Context, tokens []models.Token, tags []string, confidences []float64, sourceText string) (*Result, error) {
	start := time.Now()
	res, err := h.run(ctx, tokens, tags, confidences, sourceText)
	h.metrics.RecordExtraction(err, time.Since(start).Seconds())
	return res, err
}

func (h *Handler) run(ctx context.Context, tokens []models.Token, tags []string, confidences []float64, sourceText string) (*Result, error) {
	entities, err := decode.Decode(tokens, tags, confidences, h.scheme)
	if err != nil {
		h.metrics.RecordDecodeError(decodeErrorKind(err))
		return nil, fmt.Errorf("decode: %w", err)
	}
	for _, e := range entities {
		h.metrics.RecordEntity(e.Type)
	}

	requestID := fmt.Sprintf("extract-%d", h.requestSeq.Add(1))
	logger := logging.WithRequest(requestID)

	record, warnings := form.Map(entities, sourceText)
	for _, w := range warnings {
		h.metrics.RecordMappingWarning(w.Field)
		logger.Debug().Str("field", w.Field).Str("message", w.Message).Msg("mapping warning")
	}

	ev := models.ExtractionCompleted{
		EventType:   "or.extraction.completed",
		RequestID:   requestID,
		Timestamp:   time.Now().UnixMilli(),
		EntityCount: len(entities),
		Warnings:    len(warnings),
	}
	if err := h.publisher.PublishExtraction(ctx, requestID, ev); err != nil {
		// Event delivery is best effort; the extraction result stands.
		logger.Warn().Err(err).Msg("extraction event not published")
	}

	return &Result{Entities: entities, Record: record, Warnings: warnings}, nil
}

func decodeErrorKind(err error) string {
	switch {
	case errors.Is(err, decode.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, decode.ErrUnknownTag):
		return "unknown_tag"
	default:
		return "other"
	}
}
