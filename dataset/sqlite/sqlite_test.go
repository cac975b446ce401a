package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/schema"
)

func sampleRows() []dataset.Section {
	return []dataset.Section{
		{Dept: "cpsc", ID: "310", Avg: 80, Year: 2014, Instructor: "smith", Title: "se", UUID: "1", Pass: 10, Fail: 1, Audit: 0},
		{Dept: "cpsc", ID: "310", Avg: 95, Year: 2015, UUID: "2"},
		{Dept: "math", ID: "100", Avg: 70.25, Year: 2013, UUID: "3"},
	}
}

func openTemp(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "insight.db")
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return b, path
}

func TestSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	b, path := openTemp(t)

	if err := b.Save(ctx, dataset.New("courses", schema.KindCourses, sampleRows())); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, dataset.New("alpha", schema.KindCourses, sampleRows()[:1])); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, dataset.New("alpha", schema.KindCourses, nil)); err == nil {
		t.Error("expected duplicate id to fail")
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	all, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "alpha" || all[1].ID != "courses" {
		t.Fatalf("unexpected datasets %v", all)
	}
	if all[1].Kind != schema.KindCourses || all[1].NumRows != 3 {
		t.Errorf("unexpected info %+v", all[1].Info)
	}
	if !reflect.DeepEqual(all[1].Rows, sampleRows()) {
		t.Errorf("rows did not round-trip: %+v", all[1].Rows)
	}

	if err := b.Delete(ctx, "courses"); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing id: %v", err)
	}
	all, err = b.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "alpha" {
		t.Errorf("expected only alpha, got %v", all)
	}
}

func TestStoreOnSQLite(t *testing.T) {
	ctx := context.Background()
	b, path := openTemp(t)

	s := dataset.NewStore(b)
	if err := s.Add(ctx, dataset.New("courses", schema.KindCourses, sampleRows())); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s = dataset.NewStore(b)
	defer s.Close()
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	info, ok := s.Snapshot().Lookup("courses")
	if !ok || info.NumRows != 3 {
		t.Errorf("expected courses with 3 rows after reload, got %+v (%v)", info, ok)
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	b, _ := openTemp(t)
	defer b.Close()

	var mode string
	if err := b.conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}
	var timeout int
	if err := b.conn.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatal(err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy timeout 5000, got %d", timeout)
	}
}
