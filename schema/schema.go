package schema

import "strings"

// Separator joins a dataset id and a field name in a qualified key.
const Separator = "_"

// Kind identifies a dataset kind. Each kind has exactly one schema.
type Kind string

const (
	KindCourses Kind = "courses"
)

// FieldType classifies a schema field.
type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeNumeric
	TypeTextual
)

func (t FieldType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeTextual:
		return "textual"
	default:
		return "unknown"
	}
}

// Field names one attribute of a course section.
type Field int

const (
	FieldAvg Field = iota
	FieldPass
	FieldFail
	FieldAudit
	FieldYear
	FieldDept
	FieldID
	FieldInstructor
	FieldTitle
	FieldUUID
)

var fieldNames = [...]string{
	FieldAvg:        "avg",
	FieldPass:       "pass",
	FieldFail:       "fail",
	FieldAudit:      "audit",
	FieldYear:       "year",
	FieldDept:       "dept",
	FieldID:         "id",
	FieldInstructor: "instructor",
	FieldTitle:      "title",
	FieldUUID:       "uuid",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "?"
	}
	return fieldNames[f]
}

// Type returns the field's type in the courses schema.
func (f Field) Type() FieldType {
	switch f {
	case FieldAvg, FieldPass, FieldFail, FieldAudit, FieldYear:
		return TypeNumeric
	case FieldDept, FieldID, FieldInstructor, FieldTitle, FieldUUID:
		return TypeTextual
	default:
		return TypeUnknown
	}
}

// Schema describes the fields of one dataset kind.
type Schema struct {
	Kind   Kind
	fields map[string]Field
}

var courses = newSchema(KindCourses,
	FieldAvg, FieldPass, FieldFail, FieldAudit, FieldYear,
	FieldDept, FieldID, FieldInstructor, FieldTitle, FieldUUID)

func newSchema(kind Kind, fields ...Field) *Schema {
	s := &Schema{Kind: kind, fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.fields[f.String()] = f
	}
	return s
}

// ForKind returns the schema used by datasets of the given kind.
func ForKind(kind Kind) (*Schema, bool) {
	switch kind {
	case KindCourses:
		return courses, true
	default:
		return nil, false
	}
}

// Courses returns the course-section schema.
func Courses() *Schema {
	return courses
}

// Lookup resolves a field name.
func (s *Schema) Lookup(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// TypeOf reports whether name is a numeric, textual or unknown field.
func (s *Schema) TypeOf(name string) FieldType {
	f, ok := s.fields[name]
	if !ok {
		return TypeUnknown
	}
	return f.Type()
}

// Fields returns the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(s.fields))
	for f := range fieldNames {
		if _, ok := s.fields[Field(f).String()]; ok {
			out = append(out, Field(f))
		}
	}
	return out
}

// SplitKey splits a qualified key like "courses_avg" into its dataset id and
// field name. It fails when either side is empty or the key has more than
// one separator.
func SplitKey(key string) (id, field string, ok bool) {
	id, field, found := strings.Cut(key, Separator)
	if !found || id == "" || field == "" || strings.Contains(field, Separator) {
		return "", "", false
	}
	return id, field, true
}

// JoinKey builds a qualified key.
func JoinKey(id string, f Field) string {
	return id + Separator + f.String()
}
