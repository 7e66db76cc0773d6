package corrections

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

// TagCount is one entry of the most-common-tags ranking.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Report summarizes correction patterns. Purely descriptive: computing
// it never touches stored data.
type Report struct {
	TotalRecords   int            `json:"total_records"`
	UniqueAuthors  []string       `json:"unique_authors"`
	TagFrequency   map[string]int `json:"tag_frequency"`
	MostCommonTags []TagCount     `json:"most_common_tags"`
}

// topTags is how many entries MostCommonTags keeps.
const topTags = 5

// Analyze computes descriptive statistics over a correction set.
func Analyze(records []models.CorrectionRecord) Report {
	freq := make(map[string]int)
	authors := make(map[string]struct{})
	for _, rec := range records {
		for _, tag := range rec.Tags {
			freq[tag]++
		}
		if rec.Metadata.Author != nil && *rec.Metadata.Author != "" {
			authors[*rec.Metadata.Author] = struct{}{}
		}
	}

	names := make([]string, 0, len(authors))
	for a := range authors {
		names = append(names, a)
	}
	sort.Strings(names)

	ranked := make([]TagCount, 0, len(freq))
	for tag, n := range freq {
		ranked = append(ranked, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	if len(ranked) > topTags {
		ranked = ranked[:topTags]
	}

	return Report{
		TotalRecords:   len(records),
		UniqueAuthors:  names,
		TagFrequency:   freq,
		MostCommonTags: ranked,
	}
}

// ValidationStats summarizes how many stored corrections still pass
// validation, with the collected issues of the failing ones.
type ValidationStats struct {
	TotalRecords int      `json:"total_records"`
	ValidRecords int      `json:"valid_records"`
	Issues       []string `json:"issues"`
}

// ValidateAll re-validates every stored correction against the scheme.
func ValidateAll(records []models.CorrectionRecord, scheme *labels.Scheme) ValidationStats {
	stats := ValidationStats{TotalRecords: len(records), Issues: []string{}}
	for i, rec := range records {
		res := Validate(rec.TrainingExample, scheme)
		if res.Valid {
			stats.ValidRecords++
		}
		for _, is := range res.Issues {
			if is.Level == LevelError {
				stats.Issues = append(stats.Issues, fmt.Sprintf("record %d: %s", i, is.Message))
			}
		}
	}
	return stats
}

// FullReport combines analysis and validation for export.
type FullReport struct {
	GeneratedAt string          `json:"generated_at"`
	SourceFile  string          `json:"source_file"`
	Analysis    Report          `json:"analysis"`
	Validation  ValidationStats `json:"validation"`
}

// ExportReport writes a pretty-printed JSON report of the correction
// store to outPath.
func ExportReport(correctionsPath, outPath string, scheme *labels.Scheme) (FullReport, error) {
	store := NewStore(correctionsPath, scheme)
	records, _, err := store.Load()
	if err != nil {
		return FullReport{}, fmt.Errorf("load corrections for report: %w", err)
	}

	report := FullReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		SourceFile:  correctionsPath,
		Analysis:    Analyze(records),
		Validation:  ValidateAll(records, scheme),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return report, fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return report, fmt.Errorf("write report %s: %w", outPath, err)
	}
	return report, nil
}
