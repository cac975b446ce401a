// Package sqlite persists datasets in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/schema"
)

// Backend is a dataset.Backend on a single SQLite database.
type Backend struct {
	conn *sql.DB
}

var _ dataset.Backend = (*Backend)(nil)

// Open opens (or creates) the SQLite file at path.
func Open(path string) (*Backend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time, avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	b := &Backend{conn: conn}
	if err := b.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.conn.Close()
}

func (b *Backend) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			num_rows INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			avg REAL NOT NULL,
			pass REAL NOT NULL,
			fail REAL NOT NULL,
			audit REAL NOT NULL,
			year REAL NOT NULL,
			dept TEXT NOT NULL,
			course_id TEXT NOT NULL,
			instructor TEXT NOT NULL,
			title TEXT NOT NULL,
			uuid TEXT NOT NULL,
			PRIMARY KEY (dataset_id, seq)
		)`,
	}
	for _, m := range migrations {
		if _, err := b.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Save writes a dataset and its rows in one transaction.
func (b *Backend) Save(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := b.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (id, kind, num_rows) VALUES (?, ?, ?)`,
		ds.ID, string(ds.Kind), len(ds.Rows)); err != nil {
		return fmt.Errorf("insert dataset %s: %w", ds.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sections
		(dataset_id, seq, avg, pass, fail, audit, year, dept, course_id, instructor, title, uuid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range ds.Rows {
		if _, err := stmt.ExecContext(ctx, ds.ID, i,
			r.Avg, r.Pass, r.Fail, r.Audit, r.Year,
			r.Dept, r.ID, r.Instructor, r.Title, r.UUID); err != nil {
			return fmt.Errorf("insert section %d of %s: %w", i, ds.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes a dataset and its rows. Deleting a missing id is not an
// error.
func (b *Backend) Delete(ctx context.Context, id string) error {
	tx, err := b.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE dataset_id = ?`, id); err != nil {
		return fmt.Errorf("delete sections of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	return tx.Commit()
}

// LoadAll reads every stored dataset, rows in insertion order.
func (b *Backend) LoadAll(ctx context.Context) ([]*dataset.Dataset, error) {
	rows, err := b.conn.QueryContext(ctx, `SELECT id, kind FROM datasets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	var out []*dataset.Dataset
	for rows.Next() {
		var id, kind string
		if err := rows.Scan(&id, &kind); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, dataset.New(id, schema.Kind(kind), nil))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ds := range out {
		sections, err := b.sections(ctx, ds.ID)
		if err != nil {
			return nil, err
		}
		ds.Rows = sections
		ds.NumRows = len(sections)
	}
	return out, nil
}

func (b *Backend) sections(ctx context.Context, id string) ([]dataset.Section, error) {
	rows, err := b.conn.QueryContext(ctx, `SELECT avg, pass, fail, audit, year, dept, course_id, instructor, title, uuid
		FROM sections WHERE dataset_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load sections of %s: %w", id, err)
	}
	defer rows.Close()

	var out []dataset.Section
	for rows.Next() {
		var s dataset.Section
		if err := rows.Scan(&s.Avg, &s.Pass, &s.Fail, &s.Audit, &s.Year,
			&s.Dept, &s.ID, &s.Instructor, &s.Title, &s.UUID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
