package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/models"
)

func TestLoad_SkipsBadLines(t *testing.T) {
	scheme := labels.Default()
	content := strings.Join([]string{
		`{"tokens": ["january", "15"], "tags": ["B-DATE", "I-DATE"]}`,
		`not json at all`,
		`{"tokens": ["a", "b"], "tags": ["O"]}`,
		`{"tokens": ["x"], "tags": ["B-BOGUS"]}`,
		``,
		`{"tokens": ["dr", "smith"], "tags": ["O", "B-PERSON_SURGEON"]}`,
	}, "\n")

	path := filepath.Join(t.TempDir(), "train.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	examples, lineErrs, err := Load(path, scheme)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(examples) != 2 {
		t.Fatalf("expected 2 good examples, got %d", len(examples))
	}
	if len(lineErrs) != 3 {
		t.Fatalf("expected 3 skipped lines, got %d: %v", len(lineErrs), lineErrs)
	}
	// 1-based line numbers of the bad records; the blank line is ignored
	// silently.
	wantLines := []int{2, 3, 4}
	for i, le := range lineErrs {
		if le.Line != wantLines[i] {
			t.Errorf("error %d: expected line %d, got %d", i, wantLines[i], le.Line)
		}
	}
	if examples[1].Tokens[1] != "smith" {
		t.Errorf("good records out of order: %+v", examples)
	}
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"), labels.Default()); err == nil {
		t.Error("expected error for missing corpus file")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	scheme := labels.Default()
	path := filepath.Join(t.TempDir(), "out.jsonl")

	examples := []models.TrainingExample{
		{Tokens: []string{"january", "15"}, Tags: []string{"B-DATE", "I-DATE"}},
		{Tokens: []string{"nothing"}, Tags: []string{"O"}},
	}
	if err := Save(path, examples); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, lineErrs, err := Load(path, scheme)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(lineErrs) != 0 {
		t.Fatalf("unexpected line errors: %v", lineErrs)
	}
	if len(loaded) != len(examples) {
		t.Fatalf("expected %d examples, got %d", len(examples), len(loaded))
	}
	for i := range examples {
		if !examples[i].Equal(loaded[i]) {
			t.Errorf("example %d differs: %+v vs %+v", i, examples[i], loaded[i])
		}
	}
}

func TestSave_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "train.jsonl")
	err := Save(path, []models.TrainingExample{
		{Tokens: []string{"a"}, Tags: []string{"O"}},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.jsonl")
	if err := Save(path, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "train.jsonl" {
		t.Errorf("expected only train.jsonl in dir, got %v", entries)
	}
}
