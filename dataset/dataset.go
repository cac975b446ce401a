// Package dataset holds course-section datasets and the catalog that owns them.
//
// A Store is the only writer of the catalog. Readers take a Snapshot, which
// never changes after it is taken: Add and Remove publish a new map instead of
// editing the current one, and a dataset's rows are frozen once added.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/razeghi71/insight/schema"
)

var (
	ErrInvalidID       = errors.New("invalid dataset id")
	ErrExists          = errors.New("dataset already exists")
	ErrNotFound        = errors.New("dataset not found")
	ErrUnsupportedKind = errors.New("unsupported dataset kind")
)

// Info describes a dataset in the catalog.
type Info struct {
	ID      string      `json:"id"`
	Kind    schema.Kind `json:"kind"`
	NumRows int         `json:"numRows"`
}

// Dataset is a named, typed collection of rows.
type Dataset struct {
	Info
	Rows []Section
}

// New builds a dataset, filling in its row count.
func New(id string, kind schema.Kind, rows []Section) *Dataset {
	return &Dataset{
		Info: Info{ID: id, Kind: kind, NumRows: len(rows)},
		Rows: rows,
	}
}

// ValidateID rejects ids that are empty, only whitespace, or contain the key
// separator.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id %q is only whitespace", ErrInvalidID, id)
	}
	if strings.Contains(id, schema.Separator) {
		return fmt.Errorf("%w: id %q contains %q", ErrInvalidID, id, schema.Separator)
	}
	return nil
}

// ValidateKind rejects kinds without a schema.
func ValidateKind(kind schema.Kind) error {
	if _, ok := schema.ForKind(kind); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	return nil
}

// Backend persists datasets across restarts.
type Backend interface {
	Save(ctx context.Context, ds *Dataset) error
	Delete(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]*Dataset, error)
	Close() error
}
