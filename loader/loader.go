// Package loader turns course data files into dataset rows.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/logger"
)

var (
	// ErrInvalidArchive is returned for content that is not a zip archive
	// with a courses/ folder.
	ErrInvalidArchive = errors.New("invalid course archive")
	// ErrNoSections is returned when no valid section was found.
	ErrNoSections = errors.New("no valid course sections")
)

// DefaultWorkers is the decode pool size used when Options.Workers is unset.
const DefaultWorkers = 4

// Options tunes loading.
type Options struct {
	// Workers bounds how many archive files are decoded at once.
	Workers int
	Logger  *slog.Logger
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return DefaultWorkers
	}
	return o.Workers
}

func (o Options) logger() *slog.Logger {
	return logger.Or(o.Logger)
}

// Load reads a file and returns its sections. The format follows the file
// extension.
func Load(ctx context.Context, filename string, opts Options) ([]dataset.Section, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		rows []dataset.Section
		err  error
	)
	switch ext {
	case ".zip":
		rows, err = loadArchive(ctx, filename, opts)
	case ".json":
		rows, err = loadCourseFile(filename)
	case ".jsonl":
		rows, err = loadJSONL(filename)
	case ".csv":
		rows, err = loadCSV(filename)
	case ".avro":
		rows, err = loadAvro(filename)
	case ".parquet":
		rows, err = loadParquet(filename)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .zip, .json, .jsonl, .csv, .avro, .parquet)", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoSections)
	}
	return rows, nil
}

func loadArchive(ctx context.Context, filename string, opts Options) ([]dataset.Section, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	rows, err := DecodeArchive(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rows, nil
}

func loadCourseFile(filename string) ([]dataset.Section, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	rows, err := ParseCourseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rows, nil
}
