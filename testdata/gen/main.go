// Command gen writes sample course datasets into testdata/ in every format
// the loader reads.
package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	goavro "github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"

	"github.com/razeghi71/insight/dataset"
)

type entry struct {
	Subject   string  `json:"Subject"`
	Course    string  `json:"Course"`
	Avg       float64 `json:"Avg"`
	Professor string  `json:"Professor"`
	Title     string  `json:"Title"`
	Pass      int     `json:"Pass"`
	Fail      int     `json:"Fail"`
	Audit     int     `json:"Audit"`
	ID        int     `json:"id"`
	Year      string  `json:"Year"`
	Section   string  `json:"Section"`
}

var courses = map[string][]entry{
	"CPSC310": {
		{"cpsc", "310", 78.5, "smith, john", "intro sw eng", 120, 8, 0, 1001, "2014", "101"},
		{"cpsc", "310", 81.2, "jones, ann", "intro sw eng", 95, 3, 1, 1002, "2015", "102"},
		{"cpsc", "310", 79.9, "", "intro sw eng", 215, 11, 1, 1003, "2015", "overall"},
	},
	"CPSC110": {
		{"cpsc", "110", 72.1, "kiczales, gregor", "comptn, progrmng", 300, 40, 2, 2001, "2013", "101"},
	},
	"MATH100": {
		{"math", "100", 68.4, "lee, chris", "diff calculus", 250, 30, 0, 3001, "2012", "101"},
	},
}

const avroSchema = `{
  "type": "record",
  "name": "Section",
  "fields": [
    {"name": "dept", "type": "string"},
    {"name": "id", "type": "string"},
    {"name": "avg", "type": "double"},
    {"name": "instructor", "type": "string"},
    {"name": "title", "type": "string"},
    {"name": "pass", "type": "int"},
    {"name": "fail", "type": "int"},
    {"name": "audit", "type": "int"},
    {"name": "uuid", "type": "string"},
    {"name": "year", "type": "int"}
  ]
}`

func main() {
	dir := "testdata"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := writeArchive(filepath.Join(dir, "courses.zip")); err != nil {
		log.Fatal(err)
	}
	rows := sections()
	if err := parquet.WriteFile(filepath.Join(dir, "sections.parquet"), rows); err != nil {
		log.Fatal(err)
	}
	if err := writeAvro(filepath.Join(dir, "sections.avro"), rows); err != nil {
		log.Fatal(err)
	}
}

func writeArchive(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, entries := range courses {
		fw, err := w.Create("courses/" + name)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(fw).Encode(map[string]any{"result": entries}); err != nil {
			return err
		}
	}
	return w.Close()
}

// sections returns the archive contents as rows, minus the overall summaries.
func sections() []dataset.Section {
	var rows []dataset.Section
	for _, entries := range courses {
		for _, e := range entries {
			if e.Section == "overall" {
				continue
			}
			var year float64
			fmt.Sscan(e.Year, &year)
			rows = append(rows, dataset.Section{
				Dept: e.Subject, ID: e.Course, Avg: e.Avg, Instructor: e.Professor, Title: e.Title,
				Pass: float64(e.Pass), Fail: float64(e.Fail), Audit: float64(e.Audit),
				UUID: fmt.Sprint(e.ID), Year: year,
			})
		}
	}
	return rows
}

func writeAvro(path string, rows []dataset.Section) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: f, Schema: avroSchema})
	if err != nil {
		return err
	}
	records := make([]any, len(rows))
	for i, r := range rows {
		records[i] = map[string]any{
			"dept": r.Dept, "id": r.ID, "avg": r.Avg, "instructor": r.Instructor, "title": r.Title,
			"pass": int32(r.Pass), "fail": int32(r.Fail), "audit": int32(r.Audit),
			"uuid": r.UUID, "year": int32(r.Year),
		}
	}
	return w.Append(records)
}
