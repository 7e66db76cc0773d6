package form

import (
	"fmt"
	"sort"
	"strings"

	"or-extraction-service/internal/models"
)

// timeFields maps time entity types to their record slot.
var timeFields = []struct {
	entityType string
	field      string
	slot       func(*Record) **string
}{
	{"TIME_IN", "times.in", func(r *Record) **string { return &r.Times.In }},
	{"TIME_OUT", "times.out", func(r *Record) **string { return &r.Times.Out }},
	{"TIME_INDUCTION", "times.induction", func(r *Record) **string { return &r.Times.Induction }},
	{"TIME_CUTTING", "times.cutting", func(r *Record) **string { return &r.Times.Cutting }},
	{"TIME_END", "times.end_of_surgery", func(r *Record) **string { return &r.Times.EndOfSurgery }},
	{"TIME_DRESSING", "times.dressing", func(r *Record) **string { return &r.Times.Dressing }},
}

// vitalFields maps vital entity types to their record slot.
var vitalFields = []struct {
	entityType string
	field      string
	slot       func(*Record) **int
}{
	{"BP_SYS", "vitals.bp_systolic", func(r *Record) **int { return &r.Vitals.BPSystolic }},
	{"BP_DIA", "vitals.bp_diastolic", func(r *Record) **int { return &r.Vitals.BPDiastolic }},
	{"HR", "vitals.heart_rate", func(r *Record) **int { return &r.Vitals.HeartRate }},
	{"SPO2", "vitals.spo2", func(r *Record) **int { return &r.Vitals.SpO2 }},
}

var anesthesiaTypes = []string{"general", "spinal", "epidural", "local", "regional"}

var specimenTypes = []string{"pathology", "culture", "cytology", "frozen", "csf", "stone"}

// Map normalizes decoded entities into the canonical form record.
// Normalization failures never abort mapping: the affected field stays
// null and a warning is appended. The returned record always contains
// every schema field.
func Map(entities []models.Entity, sourceText string) (*Record, []Warning) {
	r := NewRecord()
	var warnings []Warning
	warn := func(field, format string, args ...any) {
		warnings = append(warnings, Warning{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	groups := groupByType(entities)
	spanText := func(entityType string) string {
		return joinClean(texts(groups[entityType]))
	}

	// Date
	if raw := spanText("DATE"); raw != "" {
		if iso, ok := normalizeDate(raw); ok {
			r.Date = &iso
		} else {
			warn("date", "unparsable date %q", raw)
		}
	}

	// Times
	for _, tf := range timeFields {
		raw := spanText(tf.entityType)
		if raw == "" {
			continue
		}
		if norm, ok := normalizeTime(raw); ok {
			*tf.slot(r) = &norm
		} else {
			warn(tf.field, "unparsable time %q", raw)
		}
	}

	// Personnel. Surgeon is a repeatable role: occurrences fill
	// surgeon_1 then surgeon_2 strictly by start offset.
	surgeons := groups["PERSON_SURGEON"]
	for i, e := range surgeons {
		name := joinClean([]string{e.Text})
		if name == "" {
			continue
		}
		switch i {
		case 0:
			r.Personnel.Surgeon1 = &name
		case 1:
			r.Personnel.Surgeon2 = &name
		default:
			warn("personnel.surgeon", "no slot for surgeon occurrence %d (%q)", i+1, name)
		}
	}
	setText(&r.Personnel.Anesthetist, spanText("PERSON_ANESTHETIST"))
	setText(&r.Personnel.ScrubNurse, spanText("PERSON_SCRUB"))
	setText(&r.Personnel.CirculatingNurse, spanText("PERSON_CIRC"))
	setText(&r.Personnel.AnesthesiaTechnician, spanText("PERSON_TECH"))

	// Diagnosis, operation
	setText(&r.Diagnosis.PreOp, spanText("DIAG_PRE"))
	setText(&r.Diagnosis.PostOp, spanText("DIAG_POST"))
	setText(&r.Operation.Name, spanText("OP_NAME"))
	setText(&r.Operation.Code, spanText("OP_CODE"))

	// Vitals
	for _, vf := range vitalFields {
		raw := spanText(vf.entityType)
		if raw == "" {
			continue
		}
		if n, ok := firstInt(raw); ok {
			v := n
			*vf.slot(r) = &v
		} else {
			warn(vf.field, "non-numeric value %q", raw)
		}
	}

	// Anesthesia type keywords
	if raw := strings.ToLower(spanText("ANES_TYPE")); raw != "" {
		for _, t := range anesthesiaTypes {
			if strings.Contains(raw, t) && !contains(r.Anesthesia.Type, t) {
				r.Anesthesia.Type = append(r.Anesthesia.Type, t)
			}
		}
	}

	// Position
	setText(&r.Position, strings.ToLower(spanText("POSITION")))

	// Devices
	if raw := strings.ToLower(spanText("DEVICE")); raw != "" {
		r.Devices.Foley = strings.Contains(raw, "foley")
		r.Devices.FoleyWithIrrigation = strings.Contains(raw, "irrigation")
		r.Devices.Hemovac = strings.Contains(raw, "hemovac")
		r.Devices.NGTube = strings.Contains(raw, "ng")
		r.Devices.ChestTube = strings.Contains(raw, "chest")
	}

	// Specimen
	if raw := strings.ToLower(spanText("SPECIMEN")); raw != "" {
		r.Specimen.Sent = true
		for _, t := range specimenTypes {
			if strings.Contains(raw, t) && !contains(r.Specimen.Type, t) {
				r.Specimen.Type = append(r.Specimen.Type, t)
			}
		}
	}

	// Post-op condition
	setText(&r.ConditionPostOp, strings.ToLower(spanText("CONDITION")))

	// Medications
	if name := spanText("DRUG"); name != "" {
		med := Medication{Name: name}
		if doseRaw := spanText("DOSE"); doseRaw != "" {
			if f, ok := firstFloat(doseRaw); ok {
				med.Dose = &f
			} else {
				warn("medications.dose", "non-numeric dose %q", doseRaw)
			}
		}
		if unit := strings.TrimSpace(spanText("UNIT")); unit != "" {
			med.Unit = &unit
		}
		r.Medications = append(r.Medications, med)
	}

	// Rule-based overrides from the raw transcript.
	if s1, s2 := surgeonsFromText(sourceText); s1 != "" || s2 != "" {
		if s1 != "" {
			r.Personnel.Surgeon1 = &s1
		}
		if s2 != "" {
			r.Personnel.Surgeon2 = &s2
		}
	}
	if in := timeFromText(sourceText, "in"); in != "" {
		r.Times.In = &in
	}
	if out := timeFromText(sourceText, "out"); out != "" {
		r.Times.Out = &out
	}

	r.FreeNotes = strings.TrimSpace(sourceText)
	return r, warnings
}

// groupByType buckets entities per type, ordered by start offset with
// original list index as the tie-break. The ordering is a hard
// invariant: it decides which occurrence lands in surgeon_1.
func groupByType(entities []models.Entity) map[string][]models.Entity {
	type indexed struct {
		models.Entity
		idx int
	}
	buckets := make(map[string][]indexed)
	for i, e := range entities {
		buckets[e.Type] = append(buckets[e.Type], indexed{Entity: e, idx: i})
	}
	out := make(map[string][]models.Entity, len(buckets))
	for t, b := range buckets {
		sort.SliceStable(b, func(i, j int) bool {
			if b[i].Start != b[j].Start {
				return b[i].Start < b[j].Start
			}
			return b[i].idx < b[j].idx
		})
		es := make([]models.Entity, len(b))
		for i, e := range b {
			es[i] = e.Entity
		}
		out[t] = es
	}
	return out
}

func texts(entities []models.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Text
	}
	return out
}

func setText(slot **string, value string) {
	if value == "" {
		return
	}
	*slot = &value
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
