package loader

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/razeghi71/insight/dataset"
)

// OverallYear is the year given to a course's "overall" summary section.
const OverallYear = 1900

const courseFileSchema = `{
  "type": "object",
  "required": ["result"],
  "properties": {
    "result": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["Subject", "Course", "Avg", "Professor", "Title", "Pass", "Fail", "Audit", "id", "Year"],
        "properties": {
          "Subject":   {"type": "string"},
          "Course":    {"type": "string"},
          "Avg":       {"type": "number"},
          "Professor": {"type": "string"},
          "Title":     {"type": "string"},
          "Pass":      {"type": "number"},
          "Fail":      {"type": "number"},
          "Audit":     {"type": "number"},
          "id":        {"type": ["number", "string"]},
          "Year":      {"oneOf": [{"type": "number"}, {"type": "string", "pattern": "^\\s*-?[0-9]+(\\.[0-9]+)?\\s*$"}]},
          "Section":   {"type": "string"}
        }
      }
    }
  }
}`

var courseSchema *gojsonschema.Schema

func init() {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(courseFileSchema))
	if err != nil {
		panic(fmt.Sprintf("loader: invalid course schema: %v", err))
	}
	courseSchema = s
}

// courseEntry is one element of a course file's result array.
type courseEntry struct {
	Subject   string  `json:"Subject"`
	Course    string  `json:"Course"`
	Avg       float64 `json:"Avg"`
	Professor string  `json:"Professor"`
	Title     string  `json:"Title"`
	Pass      float64 `json:"Pass"`
	Fail      float64 `json:"Fail"`
	Audit     float64 `json:"Audit"`
	ID        any     `json:"id"`
	Year      any     `json:"Year"`
	Section   string  `json:"Section"`
}

type courseFile struct {
	Result []courseEntry `json:"result"`
}

// ParseCourseFile decodes one course file of the form {"result":[...]}. The
// whole file is rejected when it is not JSON or any entry is missing a field
// or has the wrong type.
func ParseCourseFile(data []byte) ([]dataset.Section, error) {
	res, err := courseSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot parse course file: %w", err)
	}
	if !res.Valid() {
		return nil, fmt.Errorf("course file does not match schema: %s", describe(res.Errors()))
	}

	var f courseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cannot parse course file: %w", err)
	}

	rows := make([]dataset.Section, 0, len(f.Result))
	for _, e := range f.Result {
		s, err := e.section()
		if err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}
	return rows, nil
}

func (e courseEntry) section() (dataset.Section, error) {
	s := dataset.Section{
		Dept:       e.Subject,
		ID:         e.Course,
		Avg:        e.Avg,
		Instructor: e.Professor,
		Title:      e.Title,
		Pass:       e.Pass,
		Fail:       e.Fail,
		Audit:      e.Audit,
		UUID:       stringify(e.ID),
	}
	if e.Section == "overall" {
		s.Year = OverallYear
		return s, nil
	}
	switch y := e.Year.(type) {
	case float64:
		s.Year = y
	case string:
		v, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if err != nil {
			return s, fmt.Errorf("bad year %q: %w", y, err)
		}
		s.Year = v
	}
	return s, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func describe(errs []gojsonschema.ResultError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
		if len(msgs) == 3 {
			break
		}
	}
	return strings.Join(msgs, "; ")
}
