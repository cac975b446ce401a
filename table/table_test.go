package table

import "testing"

func resultTable() *Table {
	t := NewTable([]string{"courses_dept", "courses_avg"})
	t.AddRow([]Value{StrVal("cpsc"), NumberVal(95)})
	t.AddRow([]Value{StrVal("math"), NumberVal(70.25)})
	return t
}

func TestMarshalJSONKeepsColumnOrder(t *testing.T) {
	b, err := resultTable().MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"courses_dept":"cpsc","courses_avg":95},{"courses_dept":"math","courses_avg":70.25}]`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}
}

func TestMarshalJSONEmpty(t *testing.T) {
	b, err := NewTable([]string{"courses_dept"}).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[]" {
		t.Errorf("expected [], got %s", b)
	}
}

func TestGet(t *testing.T) {
	tbl := resultTable()
	v, ok := tbl.Get(1, "courses_avg")
	if !ok || v.Float != 70.25 {
		t.Errorf("expected 70.25, got %v (%v)", v, ok)
	}
	if _, ok := tbl.Get(0, "courses_year"); ok {
		t.Error("expected missing column to fail")
	}
	if _, ok := tbl.Get(5, "courses_avg"); ok {
		t.Error("expected out of range row to fail")
	}
}

func TestCompare(t *testing.T) {
	if Compare(NumberVal(9), NumberVal(10)) >= 0 {
		t.Error("expected 9 < 10 numerically")
	}
	if Compare(StrVal("9"), StrVal("10")) <= 0 {
		t.Error("expected \"9\" > \"10\" lexicographically")
	}
	if Compare(StrVal("cpsc"), StrVal("cpsc")) != 0 {
		t.Error("expected equal strings")
	}
}

func TestMaps(t *testing.T) {
	m := resultTable().Maps()
	if len(m) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m))
	}
	if m[0]["courses_dept"] != "cpsc" || m[0]["courses_avg"] != 95.0 {
		t.Errorf("unexpected row %v", m[0])
	}
}

func TestString(t *testing.T) {
	got := resultTable().String()
	want := "[ {courses_dept:cpsc, courses_avg:95}, {courses_dept:math, courses_avg:70.25} ]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
