package labels

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_DerivesTagVocabulary(t *testing.T) {
	s, err := New([]string{"DATE", "HR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"O", "B-DATE", "I-DATE", "B-HR", "I-HR"}
	got := s.Tags()
	if len(got) != len(want) {
		t.Fatalf("expected %d tags, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		types []string
	}{
		{"empty list", nil},
		{"empty name", []string{"DATE", ""}},
		{"duplicate", []string{"DATE", "DATE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.types); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestScheme_ValidTag(t *testing.T) {
	s := Default()

	tests := []struct {
		tag   string
		valid bool
	}{
		{"O", true},
		{"B-DATE", true},
		{"I-PERSON_SURGEON", true},
		{"B-UNKNOWNTYPE", false},
		{"DATE", false},
		{"b-date", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := s.ValidTag(tt.tag); got != tt.valid {
			t.Errorf("ValidTag(%q) = %v, want %v", tt.tag, got, tt.valid)
		}
	}
}

func TestTagType(t *testing.T) {
	tests := []struct {
		tag        string
		prefix     string
		entityType string
	}{
		{"O", "O", ""},
		{"B-DATE", "B", "DATE"},
		{"I-PERSON_SURGEON", "I", "PERSON_SURGEON"},
	}

	for _, tt := range tests {
		prefix, entityType := TagType(tt.tag)
		if prefix != tt.prefix || entityType != tt.entityType {
			t.Errorf("TagType(%q) = (%q, %q), want (%q, %q)",
				tt.tag, prefix, entityType, tt.prefix, tt.entityType)
		}
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_scheme.json")
	if err := os.WriteFile(path, []byte(`["DATE", "OP_NAME"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.ValidType("OP_NAME") {
		t.Error("expected OP_NAME to be registered")
	}
	if s.ValidType("HR") {
		t.Error("did not expect HR to be registered")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
