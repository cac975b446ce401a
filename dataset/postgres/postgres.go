// Package postgres persists datasets in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/schema"
)

// Backend is a dataset.Backend on a pgx connection pool.
type Backend struct {
	pool *pgxpool.Pool
}

var _ dataset.Backend = (*Backend)(nil)

var sectionColumns = []string{
	"dataset_id", "seq", "avg", "pass", "fail", "audit", "year",
	"dept", "course_id", "instructor", "title", "uuid",
}

// Open connects to the database at dsn and creates the tables if needed.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	b := &Backend{pool: pool}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return b, nil
}

// Close closes the pool.
func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func (b *Backend) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS insight_datasets (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			num_rows INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS insight_sections (
			dataset_id TEXT NOT NULL REFERENCES insight_datasets(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			avg DOUBLE PRECISION NOT NULL,
			pass DOUBLE PRECISION NOT NULL,
			fail DOUBLE PRECISION NOT NULL,
			audit DOUBLE PRECISION NOT NULL,
			year DOUBLE PRECISION NOT NULL,
			dept TEXT NOT NULL,
			course_id TEXT NOT NULL,
			instructor TEXT NOT NULL,
			title TEXT NOT NULL,
			uuid TEXT NOT NULL,
			PRIMARY KEY (dataset_id, seq)
		)`,
	}
	for _, m := range migrations {
		if _, err := b.pool.Exec(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Save writes a dataset and bulk-copies its rows in one transaction.
func (b *Backend) Save(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO insight_datasets (id, kind, num_rows) VALUES ($1, $2, $3)`,
		ds.ID, string(ds.Kind), len(ds.Rows)); err != nil {
		return fmt.Errorf("insert dataset %s: %w", ds.ID, err)
	}

	src := pgx.CopyFromSlice(len(ds.Rows), func(i int) ([]any, error) {
		r := ds.Rows[i]
		return []any{ds.ID, i, r.Avg, r.Pass, r.Fail, r.Audit, r.Year,
			r.Dept, r.ID, r.Instructor, r.Title, r.UUID}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"insight_sections"}, sectionColumns, src); err != nil {
		return fmt.Errorf("copy sections of %s: %w", ds.ID, err)
	}
	return tx.Commit(ctx)
}

// Delete removes a dataset; its rows go with it.
func (b *Backend) Delete(ctx context.Context, id string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM insight_datasets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	return nil
}

// LoadAll reads every stored dataset, rows in insertion order.
func (b *Backend) LoadAll(ctx context.Context) ([]*dataset.Dataset, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, kind FROM insight_datasets ORDER BY id`)
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
		srows, err := b.pool.Query(ctx, `SELECT avg, pass, fail, audit, year, dept, course_id, instructor, title, uuid
			FROM insight_sections WHERE dataset_id = $1 ORDER BY seq`, ds.ID)
		if err != nil {
			return nil, fmt.Errorf("load sections of %s: %w", ds.ID, err)
		}
		sections, err := pgx.CollectRows(srows, func(row pgx.CollectableRow) (dataset.Section, error) {
			var s dataset.Section
			err := row.Scan(&s.Avg, &s.Pass, &s.Fail, &s.Audit, &s.Year,
				&s.Dept, &s.ID, &s.Instructor, &s.Title, &s.UUID)
			return s, err
		})
		if err != nil {
			return nil, fmt.Errorf("load sections of %s: %w", ds.ID, err)
		}
		ds.Rows = sections
		ds.NumRows = len(sections)
	}
	return out, nil
}
