package fuzzy

import (
	"fmt"
	"strings"

	"onboard/internal/identity/record"
)

// CheckedFields are the record fields a passport scan must corroborate.
var CheckedFields = []record.Field{
	record.FieldName,
	record.FieldSurname,
	record.FieldPassport,
}

// GenderMarker maps the record's gender to the single letter printed on a
// passport. Unknown genders have no marker.
func GenderMarker(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		return "M"
	case "female":
		return "F"
	default:
		return ""
	}
}

// HasGenderMarker checks the raw, un-normalized OCR text for marker. Only case
// is folded; an empty marker passes.
func HasGenderMarker(marker, rawOCR string) bool {
	if marker == "" {
		return true
	}
	return strings.Contains(strings.ToUpper(rawOCR), strings.ToUpper(marker))
}

// Report is the per-field outcome of verifying a record against OCR text.
type Report struct {
	Checked       []record.Field
	Skipped       []record.Field
	Failed        []record.Field
	GenderMarker  string
	GenderMissing bool
}

// OK reports whether every checked field matched and the gender marker, if
// any, was present.
func (r Report) OK() bool {
	return len(r.Failed) == 0 && !r.GenderMissing
}

// Err returns a *CheckError describing the failure, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return &CheckError{Failed: r.Failed, MissingMarker: r.missingMarker()}
}

func (r Report) missingMarker() string {
	if r.GenderMissing {
		return r.GenderMarker
	}
	return ""
}

// CheckError reports which fields the scan did not corroborate.
type CheckError struct {
	Failed        []record.Field
	MissingMarker string
}

func (e *CheckError) Error() string {
	var parts []string
	if len(e.Failed) > 0 {
		names := make([]string, 0, len(e.Failed))
		for _, f := range e.Failed {
			names = append(names, string(f))
		}
		parts = append(parts, "fields not found in scan: "+strings.Join(names, ", "))
	}
	if e.MissingMarker != "" {
		parts = append(parts, fmt.Sprintf("gender marker %q not found in scan", e.MissingMarker))
	}
	return "fuzzy check failed: " + strings.Join(parts, "; ")
}

// Verify matches each of fields held on rec against the OCR text and checks
// the gender marker. Fields with no value are skipped, not failed.
func (m *Matcher) Verify(rec *record.Record, rawOCR string, fields []record.Field) Report {
	text := m.PrepareText(rawOCR)
	var rep Report
	for _, f := range fields {
		ref := rec.Text(f)
		if strings.TrimSpace(ref) == "" {
			rep.Skipped = append(rep.Skipped, f)
			continue
		}
		rep.Checked = append(rep.Checked, f)
		if !m.matchPrepared(ref, text) {
			rep.Failed = append(rep.Failed, f)
		}
	}

	rep.GenderMarker = GenderMarker(rec.Text(record.FieldGender))
	rep.GenderMissing = !HasGenderMarker(rep.GenderMarker, rawOCR)
	return rep
}
