package corrections

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

func authored(author string, tags ...string) models.CorrectionRecord {
	tokens := make([]string, len(tags))
	for i := range tokens {
		tokens[i] = "tok"
	}
	rec := models.CorrectionRecord{
		TrainingExample: models.TrainingExample{Tokens: tokens, Tags: tags},
	}
	if author != "" {
		rec.Metadata.Author = &author
	}
	return rec
}

func TestAnalyze_Empty(t *testing.T) {
	report := Analyze(nil)
	if report.TotalRecords != 0 {
		t.Errorf("expected 0 records, got %d", report.TotalRecords)
	}
	if len(report.UniqueAuthors) != 0 || len(report.MostCommonTags) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestAnalyze_CountsAndAuthors(t *testing.T) {
	records := []models.CorrectionRecord{
		authored("alice", "O", "B-DATE", "I-DATE"),
		authored("bob", "O", "O"),
		authored("alice", "B-DATE"),
		authored("", "O"),
	}

	report := Analyze(records)
	if report.TotalRecords != 4 {
		t.Errorf("expected 4 records, got %d", report.TotalRecords)
	}
	if len(report.UniqueAuthors) != 2 || report.UniqueAuthors[0] != "alice" || report.UniqueAuthors[1] != "bob" {
		t.Errorf("expected sorted [alice bob], got %v", report.UniqueAuthors)
	}
	if report.TagFrequency["O"] != 4 {
		t.Errorf("expected 4 O tags, got %d", report.TagFrequency["O"])
	}
	if report.TagFrequency["B-DATE"] != 2 {
		t.Errorf("expected 2 B-DATE tags, got %d", report.TagFrequency["B-DATE"])
	}
}

func TestAnalyze_TopTagsRankingAndTies(t *testing.T) {
	records := []models.CorrectionRecord{
		authored("", "O", "O", "O"),
		authored("", "B-DATE", "I-DATE"),
		authored("", "B-HR", "I-HR"),
		authored("", "B-DATE", "B-HR"),
		authored("", "B-SPO2"),
	}

	report := Analyze(records)
	if len(report.MostCommonTags) != 5 {
		t.Fatalf("expected top 5 capped list, got %d", len(report.MostCommonTags))
	}
	if report.MostCommonTags[0].Tag != "O" || report.MostCommonTags[0].Count != 3 {
		t.Errorf("expected O x3 first, got %+v", report.MostCommonTags[0])
	}
	// B-DATE and B-HR tie at 2; ties break by tag name ascending.
	if report.MostCommonTags[1].Tag != "B-DATE" || report.MostCommonTags[2].Tag != "B-HR" {
		t.Errorf("expected tie broken by name, got %+v", report.MostCommonTags[1:3])
	}
}

func TestValidateAll(t *testing.T) {
	scheme := labels.Default()
	records := []models.CorrectionRecord{
		authored("", "O", "B-DATE"),
		authored("", "B-NOPE"),
		authored("", "I-DATE"), // warning only: still valid
	}

	stats := ValidateAll(records, scheme)
	if stats.TotalRecords != 3 {
		t.Errorf("expected 3 records, got %d", stats.TotalRecords)
	}
	if stats.ValidRecords != 2 {
		t.Errorf("expected 2 valid, got %d", stats.ValidRecords)
	}
	if len(stats.Issues) != 1 {
		t.Errorf("expected 1 error issue, got %v", stats.Issues)
	}
}

func TestExportReport(t *testing.T) {
	scheme := labels.Default()
	dir := t.TempDir()
	corrPath := filepath.Join(dir, "corrections.jsonl")
	outPath := filepath.Join(dir, "report.json")

	store := NewStore(corrPath, scheme)
	if _, err := store.Append(authored("alice", "O", "B-DATE")); err != nil {
		t.Fatal(err)
	}

	report, err := ExportReport(corrPath, outPath, scheme)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if report.Analysis.TotalRecords != 1 {
		t.Errorf("expected 1 analyzed record, got %d", report.Analysis.TotalRecords)
	}
	if report.GeneratedAt == "" || report.SourceFile != corrPath {
		t.Errorf("incomplete report header: %+v", report)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read exported report: %v", err)
	}
	var decoded FullReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported report is not valid JSON: %v", err)
	}
	if decoded.Validation.ValidRecords != 1 {
		t.Errorf("expected 1 valid record in export, got %d", decoded.Validation.ValidRecords)
	}
}
