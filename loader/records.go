package loader

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	goavro "github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"

	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/schema"
)

// The formats below store sections with the schema's own field names
// (avg, dept, ...). Unknown columns are ignored and missing ones stay zero.

func loadJSONL(filename string) ([]dataset.Section, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var rows []dataset.Section
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
		row, err := sectionFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return rows, nil
}

func loadCSV(filename string) ([]dataset.Section, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header from %s: %w", filename, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []dataset.Section
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(record) {
				rec[col] = strings.TrimSpace(record[i])
			}
		}
		row, err := sectionFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func loadAvro(filename string) ([]dataset.Section, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read Avro OCF from %s: %w", filename, err)
	}

	var rows []dataset.Section
	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, fmt.Errorf("error reading Avro record: %w", err)
		}
		rec, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected Avro record type %T", datum)
		}
		row, err := sectionFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("avro record %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	if err := ocfr.Err(); err != nil {
		return nil, fmt.Errorf("error reading Avro file: %w", err)
	}
	return rows, nil
}

func loadParquet(filename string) ([]dataset.Section, error) {
	rows, err := parquet.ReadFile[dataset.Section](filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read Parquet from %s: %w", filename, err)
	}
	for i := range rows {
		for _, f := range schema.Courses().Fields() {
			if f.Type() != schema.TypeNumeric {
				continue
			}
			if n := rows[i].Number(f); math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("parquet row %d: field %s: not a finite number: %v", i+1, f, n)
			}
		}
	}
	return rows, nil
}

// sectionFromRecord maps a decoded record onto a section by field name.
func sectionFromRecord(rec map[string]any) (dataset.Section, error) {
	var s dataset.Section
	sch := schema.Courses()
	for name, v := range rec {
		f, ok := sch.Lookup(name)
		if !ok {
			continue
		}
		v = unwrapUnion(v)
		if v == nil {
			continue
		}
		if f.Type() == schema.TypeNumeric {
			n, err := number(v)
			if err != nil {
				return s, fmt.Errorf("field %s: %w", name, err)
			}
			s.SetNumber(f, n)
		} else {
			s.SetText(f, text(v))
		}
	}
	return s, nil
}

// unwrapUnion extracts the value of an Avro union, which goavro decodes as
// {"type": value}.
func unwrapUnion(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for _, inner := range m {
		return unwrapUnion(inner)
	}
	return nil
}

func number(v any) (float64, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}
