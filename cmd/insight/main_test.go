package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/razeghi71/insight/table"
)

func TestPrintResult(t *testing.T) {
	tbl := table.NewTable([]string{"courses_dept", "courses_avg"})
	tbl.AddRow([]table.Value{table.StrVal("cpsc"), table.NumberVal(95)})
	tbl.AddRow([]table.Value{table.StrVal("mathematics"), table.NumberVal(70.5)})

	var buf bytes.Buffer
	printResult(&buf, tbl)

	want := strings.Join([]string{
		"courses_dept | courses_avg",
		"-------------+------------",
		"cpsc         | 95",
		"mathematics  | 70.5",
		"(2 rows)",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, buf.String())
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("expected %q, got %q", "ab  ", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("expected no truncation, got %q", got)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeArchive(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("courses/CPSC310")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(`{"result":[
		{"Subject":"cpsc","Course":"310","Avg":80,"Professor":"smith","Title":"se","Pass":9,"Fail":1,"Audit":0,"id":1,"Year":2014},
		{"Subject":"cpsc","Course":"310","Avg":95,"Professor":"jones","Title":"se","Pass":9,"Fail":1,"Audit":0,"id":2,"Year":2015}
	]}`))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "courses.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INSIGHT_STORE_BACKEND", "sqlite")
	t.Setenv("INSIGHT_STORE_PATH", filepath.Join(dir, "insight.db"))

	out, err := run(t, "", "add", "ubc", writeArchive(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "ubc" {
		t.Errorf("expected ubc, got %q", out)
	}

	out, err = run(t, "", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ubc | courses | 2") {
		t.Errorf("unexpected list output %q", out)
	}

	query := `{"filter":{"GT":{"ubc_avg":90}},"options":{"columns":["ubc_instructor","ubc_avg"]}}`
	out, err = run(t, query, "query", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"ubc_instructor": "jones"`) {
		t.Errorf("unexpected query output %q", out)
	}

	out, err = run(t, query, "query")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "jones") || !strings.Contains(out, "(1 rows)") {
		t.Errorf("unexpected table output %q", out)
	}

	if _, err := run(t, `{"filter":{"OR":[]},"options":{"columns":["ubc_avg"]}}`, "query"); err == nil ||
		!strings.Contains(err.Error(), "empty_logical_array") {
		t.Errorf("expected empty_logical_array error, got %v", err)
	}

	out, err = run(t, "", "remove", "ubc")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "ubc" {
		t.Errorf("expected ubc, got %q", out)
	}
	if _, err := run(t, "", "remove", "ubc"); err == nil {
		t.Error("expected an error removing a missing dataset")
	}
}

func TestCommandsDefaultConfigPersists(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := run(t, "", "add", "courses", writeArchive(t, dir)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "insight.db")); err != nil {
		t.Errorf("expected the default sqlite file: %v", err)
	}

	out, err := run(t, "", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "courses | courses | 2") {
		t.Errorf("expected the added dataset in a later list, got %q", out)
	}

	query := `{"filter":{},"options":{"columns":["courses_avg"],"order":"courses_avg"}}`
	out, err = run(t, query, "query", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"courses_avg": 95`) {
		t.Errorf("unexpected query output %q", out)
	}
}

func TestQueryBadFormat(t *testing.T) {
	if _, err := run(t, "{}", "query", "--format", "xml"); err == nil {
		t.Error("expected unknown format error")
	}
}
