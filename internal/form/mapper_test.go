package form

import (
	"encoding/json"
	"strings"
	"testing"

	"or-extraction-service/internal/models"
)

func TestMap_EmptyInputIsSchemaComplete(t *testing.T) {
	record, warnings := Map(nil, "")
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// Every schema field must be present even with no entities.
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{
		"date", "times", "personnel", "diagnosis", "operation", "anesthesia",
		"position", "devices", "specimen", "condition_post_op", "vitals",
		"medications", "free_notes",
	} {
		if _, ok := m[field]; !ok {
			t.Errorf("missing schema field %q", field)
		}
	}

	if m["date"] != nil {
		t.Errorf("expected null date, got %v", m["date"])
	}
	times, ok := m["times"].(map[string]any)
	if !ok {
		t.Fatalf("times is not an object: %v", m["times"])
	}
	for _, f := range []string{"in", "out", "induction", "cutting", "end_of_surgery", "dressing"} {
		v, present := times[f]
		if !present {
			t.Errorf("missing times field %q", f)
		}
		if v != nil {
			t.Errorf("expected null times.%s, got %v", f, v)
		}
	}
	// List fields marshal as [] rather than null.
	if s := string(data); strings.Contains(s, `"medications":null`) {
		t.Error("medications should marshal as [], not null")
	}
}

func TestMap_DateScenario(t *testing.T) {
	entities := []models.Entity{
		{Type: "DATE", Start: 11, End: 28, Text: "january 15th 2025", Confidence: 0.9},
	}
	record, warnings := Map(entities, "surgery on january 15th 2025")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if record.Date == nil || *record.Date != "2025-01-15" {
		t.Errorf("expected date 2025-01-15, got %v", record.Date)
	}
}

func TestMap_UnparsableDateWarnsAndContinues(t *testing.T) {
	entities := []models.Entity{
		{Type: "DATE", Start: 0, End: 7, Text: "someday", Confidence: 0.9},
		{Type: "HR", Start: 10, End: 13, Text: "110", Confidence: 0.9},
	}
	record, warnings := Map(entities, "someday hr 110")
	if record.Date != nil {
		t.Errorf("expected null date, got %v", *record.Date)
	}
	if len(warnings) != 1 || warnings[0].Field != "date" {
		t.Fatalf("expected one date warning, got %v", warnings)
	}
	// The rest of the record still maps.
	if record.Vitals.HeartRate == nil || *record.Vitals.HeartRate != 110 {
		t.Error("expected heart rate 110 despite date failure")
	}
}

func TestMap_SurgeonOrderingByOffset(t *testing.T) {
	// List order deliberately reversed: the entity at offset 10 must
	// still land in surgeon_1.
	entities := []models.Entity{
		{Type: "PERSON_SURGEON", Start: 50, End: 55, Text: "jones", Confidence: 0.9},
		{Type: "PERSON_SURGEON", Start: 10, End: 15, Text: "smith", Confidence: 0.9},
	}
	record, _ := Map(entities, "")
	if record.Personnel.Surgeon1 == nil || *record.Personnel.Surgeon1 != "smith" {
		t.Errorf("expected surgeon_1 smith, got %v", record.Personnel.Surgeon1)
	}
	if record.Personnel.Surgeon2 == nil || *record.Personnel.Surgeon2 != "jones" {
		t.Errorf("expected surgeon_2 jones, got %v", record.Personnel.Surgeon2)
	}
}

func TestMap_SurgeonOrderingTieBreakByIndex(t *testing.T) {
	entities := []models.Entity{
		{Type: "PERSON_SURGEON", Start: 10, End: 15, Text: "first", Confidence: 0.9},
		{Type: "PERSON_SURGEON", Start: 10, End: 15, Text: "second", Confidence: 0.9},
	}
	record, _ := Map(entities, "")
	if record.Personnel.Surgeon1 == nil || *record.Personnel.Surgeon1 != "first" {
		t.Errorf("expected earlier list index in surgeon_1, got %v", record.Personnel.Surgeon1)
	}
}

func TestMap_ThirdSurgeonWarns(t *testing.T) {
	entities := []models.Entity{
		{Type: "PERSON_SURGEON", Start: 0, End: 1, Text: "a", Confidence: 0.9},
		{Type: "PERSON_SURGEON", Start: 2, End: 3, Text: "b", Confidence: 0.9},
		{Type: "PERSON_SURGEON", Start: 4, End: 5, Text: "c", Confidence: 0.9},
	}
	_, warnings := Map(entities, "")
	if len(warnings) != 1 || warnings[0].Field != "personnel.surgeon" {
		t.Errorf("expected one surgeon-slot warning, got %v", warnings)
	}
}

func TestMap_TimesNormalizedTo24h(t *testing.T) {
	entities := []models.Entity{
		{Type: "TIME_IN", Start: 0, End: 7, Text: "9:30 pm", Confidence: 0.9},
		{Type: "TIME_OUT", Start: 10, End: 15, Text: "11:45", Confidence: 0.9},
	}
	record, warnings := Map(entities, "")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if record.Times.In == nil || *record.Times.In != "21:30" {
		t.Errorf("expected in 21:30, got %v", record.Times.In)
	}
	if record.Times.Out == nil || *record.Times.Out != "11:45" {
		t.Errorf("expected out 11:45, got %v", record.Times.Out)
	}
}

func TestMap_VitalsNumericParse(t *testing.T) {
	entities := []models.Entity{
		{Type: "BP_SYS", Start: 0, End: 3, Text: "120", Confidence: 0.9},
		{Type: "BP_DIA", Start: 4, End: 6, Text: "80", Confidence: 0.9},
		{Type: "SPO2", Start: 7, End: 15, Text: "unknown", Confidence: 0.9},
	}
	record, warnings := Map(entities, "")
	if record.Vitals.BPSystolic == nil || *record.Vitals.BPSystolic != 120 {
		t.Errorf("expected systolic 120, got %v", record.Vitals.BPSystolic)
	}
	if record.Vitals.BPDiastolic == nil || *record.Vitals.BPDiastolic != 80 {
		t.Errorf("expected diastolic 80, got %v", record.Vitals.BPDiastolic)
	}
	if record.Vitals.SpO2 != nil {
		t.Error("expected null spo2 for non-numeric span")
	}
	if len(warnings) != 1 || warnings[0].Field != "vitals.spo2" {
		t.Errorf("expected one spo2 warning, got %v", warnings)
	}
}

func TestMap_MedicationWithDoseAndUnit(t *testing.T) {
	entities := []models.Entity{
		{Type: "DRUG", Start: 0, End: 8, Text: "morphine", Confidence: 0.9},
		{Type: "DOSE", Start: 9, End: 12, Text: "2.5", Confidence: 0.9},
		{Type: "UNIT", Start: 13, End: 15, Text: "mg", Confidence: 0.9},
	}
	record, _ := Map(entities, "")
	if len(record.Medications) != 1 {
		t.Fatalf("expected 1 medication, got %d", len(record.Medications))
	}
	med := record.Medications[0]
	if med.Name != "morphine" {
		t.Errorf("expected morphine, got %s", med.Name)
	}
	if med.Dose == nil || *med.Dose != 2.5 {
		t.Errorf("expected dose 2.5, got %v", med.Dose)
	}
	if med.Unit == nil || *med.Unit != "mg" {
		t.Errorf("expected unit mg, got %v", med.Unit)
	}
}

func TestMap_DevicesAndSpecimenKeywords(t *testing.T) {
	entities := []models.Entity{
		{Type: "DEVICE", Start: 0, End: 20, Text: "foley with irrigation", Confidence: 0.9},
		{Type: "SPECIMEN", Start: 30, End: 50, Text: "sent for pathology", Confidence: 0.9},
		{Type: "ANES_TYPE", Start: 60, End: 70, Text: "general", Confidence: 0.9},
	}
	record, _ := Map(entities, "")
	if !record.Devices.Foley || !record.Devices.FoleyWithIrrigation {
		t.Error("expected foley and irrigation flags set")
	}
	if record.Devices.Hemovac {
		t.Error("did not expect hemovac")
	}
	if !record.Specimen.Sent {
		t.Error("expected specimen sent")
	}
	if len(record.Specimen.Type) != 1 || record.Specimen.Type[0] != "pathology" {
		t.Errorf("expected specimen type [pathology], got %v", record.Specimen.Type)
	}
	if len(record.Anesthesia.Type) != 1 || record.Anesthesia.Type[0] != "general" {
		t.Errorf("expected anesthesia type [general], got %v", record.Anesthesia.Type)
	}
}

func TestMap_FreeTextJoinsMultipleEntities(t *testing.T) {
	entities := []models.Entity{
		{Type: "DIAG_PRE", Start: 20, End: 30, Text: "cholecystitis", Confidence: 0.9},
		{Type: "DIAG_PRE", Start: 0, End: 10, Text: "acute", Confidence: 0.9},
	}
	record, _ := Map(entities, "")
	// Joined in offset order, not overwritten.
	if record.Diagnosis.PreOp == nil || *record.Diagnosis.PreOp != "acute cholecystitis" {
		t.Errorf("expected 'acute cholecystitis', got %v", record.Diagnosis.PreOp)
	}
}

func TestMap_RuleOverrides(t *testing.T) {
	transcript := "surgeon one dr smith surgeon two dr jones in 930 pm out 530 am"
	record, _ := Map(nil, transcript)

	if record.Personnel.Surgeon1 == nil || *record.Personnel.Surgeon1 != "smith" {
		t.Errorf("expected surgeon_1 smith from transcript rule, got %v", record.Personnel.Surgeon1)
	}
	if record.Personnel.Surgeon2 == nil || *record.Personnel.Surgeon2 != "jones" {
		t.Errorf("expected surgeon_2 jones from transcript rule, got %v", record.Personnel.Surgeon2)
	}
	if record.Times.In == nil || *record.Times.In != "21:30" {
		t.Errorf("expected in 21:30 from transcript rule, got %v", record.Times.In)
	}
	if record.Times.Out == nil || *record.Times.Out != "05:30" {
		t.Errorf("expected out 05:30 from transcript rule, got %v", record.Times.Out)
	}
	if record.FreeNotes != transcript {
		t.Errorf("expected free_notes to carry the transcript, got %q", record.FreeNotes)
	}
}
