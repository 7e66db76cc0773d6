// Package form maps decoded entity spans onto the canonical operating
// room form record. Every field of the output schema is always present
// in the marshaled record (null when absent), so callers never need to
// distinguish a missing key from an empty value.
package form

// Times holds the normalized surgery timestamps, 24h HH:MM.
type Times struct {
	In           *string `json:"in"`
	Out          *string `json:"out"`
	Induction    *string `json:"induction"`
	Cutting      *string `json:"cutting"`
	EndOfSurgery *string `json:"end_of_surgery"`
	Dressing     *string `json:"dressing"`
}

// Personnel holds the named staff slots. Repeatable roles fill their
// numbered slots in order of entity start offset.
type Personnel struct {
	Surgeon1             *string `json:"surgeon_1"`
	Surgeon2             *string `json:"surgeon_2"`
	Assistant1           *string `json:"assistant_1"`
	Assistant2           *string `json:"assistant_2"`
	Anesthetist          *string `json:"anesthetist"`
	ScrubNurse           *string `json:"scrub_nurse"`
	CirculatingNurse     *string `json:"circulating_nurse"`
	AnesthesiaTechnician *string `json:"anesthesia_technician"`
}

// Diagnosis holds the pre- and post-operative diagnoses.
type Diagnosis struct {
	PreOp  *string `json:"pre_op"`
	PostOp *string `json:"post_op"`
}

// Operation holds the procedure name, code and free notes.
type Operation struct {
	Name  *string `json:"name"`
	Code  *string `json:"code"`
	Notes *string `json:"notes"`
}

// Anesthesia holds the anesthesia types applied and sedation note.
type Anesthesia struct {
	Type     []string `json:"type"`
	Sedation *string  `json:"sedation"`
}

// Devices flags the devices placed during surgery.
type Devices struct {
	Foley               bool     `json:"foley"`
	FoleyWithIrrigation bool     `json:"foley_with_irrigation"`
	Hemovac             bool     `json:"hemovac"`
	NGTube              bool     `json:"ng_tube"`
	ChestTube           bool     `json:"chest_tube"`
	Others              []string `json:"others"`
}

// Specimen records whether specimens were sent and their kinds.
type Specimen struct {
	Sent bool     `json:"sent"`
	Type []string `json:"type"`
}

// Vitals holds the recorded vital signs.
type Vitals struct {
	BPSystolic  *int `json:"bp_systolic"`
	BPDiastolic *int `json:"bp_diastolic"`
	HeartRate   *int `json:"heart_rate"`
	SpO2        *int `json:"spo2"`
}

// Medication is one administered drug with optional dose and unit.
type Medication struct {
	Name string   `json:"name"`
	Dose *float64 `json:"dose"`
	Unit *string  `json:"unit"`
}

// Record is the canonical structured output of the mapper. The field
// set and JSON names are a versioned contract with the consuming API
// layer.
type Record struct {
	Date            *string      `json:"date"` // YYYY-MM-DD
	Times           Times        `json:"times"`
	Personnel       Personnel    `json:"personnel"`
	Diagnosis       Diagnosis    `json:"diagnosis"`
	Operation       Operation    `json:"operation"`
	Anesthesia      Anesthesia   `json:"anesthesia"`
	Position        *string      `json:"position"`
	Devices         Devices      `json:"devices"`
	Specimen        Specimen     `json:"specimen"`
	ConditionPostOp *string      `json:"condition_post_op"`
	Vitals          Vitals       `json:"vitals"`
	Medications     []Medication `json:"medications"`
	FreeNotes       string       `json:"free_notes"`
}

// NewRecord returns a schema-complete record with all scalar fields
// null and all list fields empty (never JSON null).
func NewRecord() *Record {
	return &Record{
		Anesthesia:  Anesthesia{Type: []string{}},
		Devices:     Devices{Others: []string{}},
		Specimen:    Specimen{Type: []string{}},
		Medications: []Medication{},
	}
}

// Warning records a non-fatal normalization failure: the named field
// stays null and mapping of the rest of the record continues.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
