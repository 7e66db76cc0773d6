package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"or-extraction-service/internal/config"
	"or-extraction-service/internal/corrections"
	"or-extraction-service/internal/decode"
	"or-extraction-service/internal/events"
	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
	"or-extraction-service/internal/observability/logging"
	"or-extraction-service/internal/observability/metrics"
	"or-extraction-service/internal/service/extraction"
)

type apiHandlers struct {
	cfg       *config.Configuration
	scheme    *labels.Scheme
	extractor *extraction.Handler
	store     *corrections.Store
	publisher *events.Publisher
}

type extractRequest struct {
	// Text runs the configured predictor before decoding.
	Text string `json:"text"`

	// Predictions bypass the predictor: supply tokens and tags directly.
	Tokens      []models.Token `json:"tokens,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Confidences []float64      `json:"confidences,omitempty"`
	SourceText  string         `json:"source_text,omitempty"`
}

func (a *apiHandlers) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var (
		res *extraction.Result
		err error
	)
	switch {
	case len(req.Tokens) > 0 || len(req.Tags) > 0:
		source := req.SourceText
		if source == "" {
			source = req.Text
		}
		res, err = a.extractor.ExtractPredictions(r.Context(), req.Tokens, req.Tags, req.Confidences, source)
	case req.Text != "":
		res, err = a.extractor.Extract(r.Context(), req.Text)
	default:
		writeError(w, http.StatusBadRequest, "request requires text or tokens/tags")
		return
	}

	if err != nil {
		if errors.Is(err, decode.ErrShapeMismatch) || errors.Is(err, decode.ErrUnknownTag) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Error().Err(err).Msg("extraction failed")
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type correctionRequest struct {
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
	Author *string  `json:"author,omitempty"`
}

type correctionResponse struct {
	Stored bool               `json:"stored"`
	Result corrections.Result `json:"result"`
}

func (a *apiHandlers) submitCorrection(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	rec := models.CorrectionRecord{
		TrainingExample: models.TrainingExample{Tokens: req.Tokens, Tags: req.Tags},
		Metadata: models.CorrectionMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Author:    req.Author,
		},
	}

	author := ""
	if req.Author != nil {
		author = *req.Author
	}
	logger := logging.WithCorrection(author, len(req.Tokens))

	res, err := a.store.Append(rec)
	if err != nil {
		var rejected *corrections.RejectedError
		if errors.As(err, &rejected) {
			metrics.DefaultMetrics.RecordCorrection(false)
			writeJSON(w, http.StatusUnprocessableEntity, correctionResponse{Stored: false, Result: rejected.Result})
			return
		}
		logger.Error().Err(err).Msg("correction store append failed")
		writeError(w, http.StatusInternalServerError, "failed to store correction")
		return
	}
	metrics.DefaultMetrics.RecordCorrection(true)

	ev := models.CorrectionAccepted{
		EventType:  "or.correction.accepted",
		Timestamp:  time.Now().UnixMilli(),
		Author:     req.Author,
		TokenCount: len(req.Tokens),
		Warnings:   len(res.Issues),
	}
	if err := a.publisher.PublishCorrection(r.Context(), a.store.Path(), ev); err != nil {
		logger.Warn().Err(err).Msg("correction event not published")
	}

	writeJSON(w, http.StatusCreated, correctionResponse{Stored: true, Result: res})
}

type reportResponse struct {
	Analysis   corrections.Report          `json:"analysis"`
	Validation corrections.ValidationStats `json:"validation"`
}

func (a *apiHandlers) correctionsReport(w http.ResponseWriter, r *http.Request) {
	records, lineErrs, err := a.store.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load corrections for report")
		writeError(w, http.StatusInternalServerError, "failed to load corrections")
		return
	}
	for _, le := range lineErrs {
		log.Warn().Err(le).Msg("correction line skipped in report")
	}
	writeJSON(w, http.StatusOK, reportResponse{
		Analysis:   corrections.Analyze(records),
		Validation: corrections.ValidateAll(records, a.scheme),
	})
}

type mergeRequest struct {
	Dedupe *bool  `json:"dedupe,omitempty"` // defaults to true
	Output string `json:"output,omitempty"` // defaults to the configured merged file
}

func (a *apiHandlers) mergeCorrections(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}
	dedupe := true
	if req.Dedupe != nil {
		dedupe = *req.Dedupe
	}
	out := req.Output
	if out == "" {
		out = a.cfg.Data.MergedFile
	}

	res, err := corrections.MergeFiles(a.cfg.Data.TrainFile, a.cfg.Data.CorrectionsFile, out, dedupe, a.scheme)
	if err != nil {
		log.Error().Err(err).Msg("merge failed")
		writeError(w, http.StatusInternalServerError, "merge failed: "+err.Error())
		return
	}
	metrics.DefaultMetrics.RecordMerge(res.AddedCount, res.DuplicateCount)

	writeJSON(w, http.StatusOK, map[string]any{
		"output":     out,
		"total":      len(res.Examples),
		"added":      res.AddedCount,
		"duplicates": res.DuplicateCount,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
