package dataset

import (
	"github.com/razeghi71/insight/schema"
	"github.com/razeghi71/insight/table"
)

// Section is one course-section record.
type Section struct {
	Avg   float64 `json:"avg" parquet:"avg"`
	Pass  float64 `json:"pass" parquet:"pass"`
	Fail  float64 `json:"fail" parquet:"fail"`
	Audit float64 `json:"audit" parquet:"audit"`
	Year  float64 `json:"year" parquet:"year"`

	Dept       string `json:"dept" parquet:"dept"`
	ID         string `json:"id" parquet:"id"`
	Instructor string `json:"instructor" parquet:"instructor"`
	Title      string `json:"title" parquet:"title"`
	UUID       string `json:"uuid" parquet:"uuid"`
}

// Number returns the value of a numeric field, or 0 for a textual one.
func (s *Section) Number(f schema.Field) float64 {
	switch f {
	case schema.FieldAvg:
		return s.Avg
	case schema.FieldPass:
		return s.Pass
	case schema.FieldFail:
		return s.Fail
	case schema.FieldAudit:
		return s.Audit
	case schema.FieldYear:
		return s.Year
	}
	return 0
}

// Text returns the value of a textual field, or "" for a numeric one.
func (s *Section) Text(f schema.Field) string {
	switch f {
	case schema.FieldDept:
		return s.Dept
	case schema.FieldID:
		return s.ID
	case schema.FieldInstructor:
		return s.Instructor
	case schema.FieldTitle:
		return s.Title
	case schema.FieldUUID:
		return s.UUID
	}
	return ""
}

// Value returns a field as a table cell of the field's type.
func (s *Section) Value(f schema.Field) table.Value {
	if f.Type() == schema.TypeNumeric {
		return table.NumberVal(s.Number(f))
	}
	return table.StrVal(s.Text(f))
}

// SetNumber assigns a numeric field. Textual fields are left unchanged.
func (s *Section) SetNumber(f schema.Field, v float64) {
	switch f {
	case schema.FieldAvg:
		s.Avg = v
	case schema.FieldPass:
		s.Pass = v
	case schema.FieldFail:
		s.Fail = v
	case schema.FieldAudit:
		s.Audit = v
	case schema.FieldYear:
		s.Year = v
	}
}

// SetText assigns a textual field. Numeric fields are left unchanged.
func (s *Section) SetText(f schema.Field, v string) {
	switch f {
	case schema.FieldDept:
		s.Dept = v
	case schema.FieldID:
		s.ID = v
	case schema.FieldInstructor:
		s.Instructor = v
	case schema.FieldTitle:
		s.Title = v
	case schema.FieldUUID:
		s.UUID = v
	}
}
