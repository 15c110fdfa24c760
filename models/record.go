package models

// Field names the dashboard reads from uploaded rows.
const (
	FieldState     = "State"
	FieldDate      = "Date"
	FieldConfirmed = "Confirmed"
	FieldActive    = "Active"
	FieldRecovered = "Recovered"
	FieldDeaths    = "Deaths"
	FieldGender    = "Gender"
	FieldAge       = "Age"
)

// ExpectedHeaders lists the columns the dashboard understands, in display order.
var ExpectedHeaders = []string{
	FieldState, FieldDate, FieldConfirmed, FieldActive,
	FieldRecovered, FieldDeaths, FieldGender, FieldAge,
}

// CaseRecord is one uploaded CSV row keyed by header name. Any field may be absent.
type CaseRecord map[string]string

// Get returns the value of field, or fallback when the field is absent or empty.
// Every aggregation goes through this accessor so missing data always degrades
// the same way.
func (r CaseRecord) Get(field, fallback string) string {
	if v, ok := r[field]; ok && v != "" {
		return v
	}
	return fallback
}

// Dataset is the uploaded rows in file order.
type Dataset []CaseRecord

// Clone returns a deep copy so callers cannot mutate the resident dataset.
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	for i, r := range d {
		cp := make(CaseRecord, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
