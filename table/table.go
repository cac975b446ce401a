package table

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ValueType represents the type of a Value.
type ValueType int

const (
	TypeNumber ValueType = iota
	TypeString
)

// Value is a projected cell: a number or a string.
type Value struct {
	Type  ValueType
	Float float64
	Str   string
}

// NumberVal creates a numeric value.
func NumberVal(v float64) Value {
	return Value{Type: TypeNumber, Float: v}
}

// StrVal creates a string value.
func StrVal(v string) Value {
	return Value{Type: TypeString, Str: v}
}

// AsString returns the string representation.
func (v Value) AsString() string {
	if v.Type == TypeNumber {
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
	return v.Str
}

// Compare orders two values: numerically when both are numbers, otherwise
// lexicographically by their string form.
func Compare(a, b Value) int {
	if a.Type == TypeNumber && b.Type == TypeNumber {
		switch {
		case a.Float < b.Float:
			return -1
		case a.Float > b.Float:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.AsString(), b.AsString())
}

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Type == TypeNumber {
		return json.Marshal(v.Float)
	}
	return json.Marshal(v.Str)
}

// Row is a single projected row, one value per table column.
type Row struct {
	Values []Value
}

// Table is a query result: ordered columns + rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	return &Table{
		Columns: columns,
		Rows:    nil,
	}
}

// ColIndex returns the index of a column by name, or -1.
func (t *Table) ColIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AddRow appends a row to the table.
func (t *Table) AddRow(values []Value) {
	t.Rows = append(t.Rows, Row{Values: values})
}

// Get returns the value at a given row and column name.
func (t *Table) Get(row int, col string) (Value, bool) {
	idx := t.ColIndex(col)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return Value{}, false
	}
	return t.Rows[row].Values[idx], true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Maps returns every row as a column -> value map.
func (t *Table) Maps() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, r := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			v := r.Values[j]
			if v.Type == TypeNumber {
				m[col] = v.Float
			} else {
				m[col] = v.Str
			}
		}
		out[i] = m
	}
	return out
}

// MarshalJSON encodes the table as an array of objects whose keys follow
// column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			v, err := r.Values[j].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// String returns a compact representation of the table.
func (t *Table) String() string {
	if len(t.Rows) == 0 {
		return "[" + strings.Join(t.Columns, ", ") + "] (0 rows)"
	}

	var sb strings.Builder
	sb.WriteString("[ ")
	for i, r := range t.Rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("{")
		for j, v := range r.Values {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.Columns[j])
			sb.WriteString(":")
			sb.WriteString(v.AsString())
		}
		sb.WriteString("}")
	}
	sb.WriteString(" ]")
	return sb.String()
}
