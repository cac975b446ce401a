// Package insight is the entry point for running queries and managing the
// datasets they run against.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/razeghi71/insight/ast"
	"github.com/razeghi71/insight/config"
	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/dataset/postgres"
	"github.com/razeghi71/insight/dataset/sqlite"
	"github.com/razeghi71/insight/engine"
	"github.com/razeghi71/insight/loader"
	"github.com/razeghi71/insight/logger"
	"github.com/razeghi71/insight/metrics"
	"github.com/razeghi71/insight/qerr"
	"github.com/razeghi71/insight/schema"
	"github.com/razeghi71/insight/table"
	"github.com/razeghi71/insight/validator"
)

// Options configures a Facade.
type Options struct {
	// ResultLimit caps result rows; zero or less disables the cap.
	ResultLimit int
	// Workers bounds concurrent file decoding during ingestion.
	Workers int
	Logger  *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ResultLimit: engine.DefaultOptions().Limit,
		Workers:     loader.DefaultWorkers,
	}
}

// Facade runs queries against a dataset store. It is safe for concurrent use.
type Facade struct {
	store  *dataset.Store
	engine engine.Options
	loader loader.Options
	log    *slog.Logger
}

// New wraps an already loaded store.
func New(store *dataset.Store, opts Options) *Facade {
	log := logger.Or(opts.Logger)
	return &Facade{
		store:  store,
		engine: engine.Options{Limit: opts.ResultLimit},
		loader: loader.Options{Workers: opts.Workers, Logger: log},
		log:    log,
	}
}

// Open builds a facade from configuration, opening the configured backend
// and loading the datasets it holds.
func Open(ctx context.Context, cfg *config.Config) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var backend dataset.Backend
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		b, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		backend = b
	case config.BackendPostgres:
		b, err := postgres.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		backend = b
	}

	store := dataset.NewStore(backend)
	if err := store.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}

	f := New(store, Options{
		ResultLimit: cfg.Query.ResultLimit,
		Workers:     cfg.Ingest.Workers,
		Logger:      logger.Get(),
	})
	metrics.Datasets.Set(float64(len(store.List())))
	f.log.Info("catalog loaded", "backend", cfg.Store.Backend, "datasets", len(store.List()))
	return f, nil
}

// Close releases the store's backend.
func (f *Facade) Close() error {
	return f.store.Close()
}

// RunQuery parses and runs a JSON query document.
func (f *Facade) RunQuery(ctx context.Context, doc []byte) (*table.Table, error) {
	return f.run(ctx, func(cat validator.Catalog) (*ast.Query, error) {
		return validator.Parse(doc, cat)
	})
}

// RunQueryValue runs an already decoded query document, as produced by
// encoding/json.
func (f *Facade) RunQueryValue(ctx context.Context, doc any) (*table.Table, error) {
	return f.run(ctx, func(cat validator.Catalog) (*ast.Query, error) {
		return validator.Validate(doc, cat)
	})
}

// run validates against one catalog snapshot and reads rows from that same
// snapshot, so a concurrent remove is either fully visible or not at all.
func (f *Facade) run(ctx context.Context, validate func(validator.Catalog) (*ast.Query, error)) (*table.Table, error) {
	start := time.Now()
	reqID := logger.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, reqID)
	}
	log := logger.FromContext(ctx, f.log)

	snap := f.store.Snapshot()
	q, err := validate(snap)
	if err != nil {
		return nil, f.reject(log, start, err)
	}

	rows, ok := snap.Rows(q.Dataset)
	if !ok {
		return nil, f.reject(log, start, qerr.Newf(qerr.UnknownDataset, "dataset %q has not been added", q.Dataset))
	}

	result, err := engine.Run(rows, q, f.engine)
	if err != nil {
		return nil, f.reject(log, start, err)
	}

	elapsed := time.Since(start)
	metrics.ObserveQuery(metrics.OutcomeOK, elapsed, result.Len())
	log.Debug("query",
		"dataset", q.Dataset,
		"rows", result.Len(),
		"scanned", len(rows),
		"duration", elapsed)
	return result, nil
}

func (f *Facade) reject(log *slog.Logger, start time.Time, err error) error {
	kind := qerr.KindOf(err)
	outcome := string(kind)
	if outcome == "" {
		outcome = "error"
	}
	metrics.ObserveQuery(outcome, time.Since(start), 0)
	log.Info("query rejected", "kind", outcome, "error", err)
	return err
}

// AddDataset decodes a course archive (raw zip or base64) and adds it under
// id. It returns the ids of every dataset after the add.
func (f *Facade) AddDataset(ctx context.Context, id string, kind schema.Kind, content []byte) ([]string, error) {
	return f.add(ctx, id, kind, func() ([]dataset.Section, error) {
		return loader.DecodeArchive(ctx, content, f.loader)
	})
}

// AddDatasetFile loads a dataset from a file whose format follows its
// extension, see loader.Load.
func (f *Facade) AddDatasetFile(ctx context.Context, id string, kind schema.Kind, path string) ([]string, error) {
	return f.add(ctx, id, kind, func() ([]dataset.Section, error) {
		return loader.Load(ctx, path, f.loader)
	})
}

func (f *Facade) add(ctx context.Context, id string, kind schema.Kind, load func() ([]dataset.Section, error)) ([]string, error) {
	ds, err := f.prepare(ctx, id, kind, load)
	if err == nil {
		err = f.store.Add(ctx, ds)
	}
	metrics.ObserveDatasetOp("add", err, len(f.store.List()))
	if err != nil {
		f.log.Info("dataset add rejected", "id", id, "kind", kind, "error", err)
		return nil, err
	}
	f.log.Info("dataset added", "id", id, "kind", kind, "rows", ds.NumRows)
	return f.store.IDs(), nil
}

// prepare checks id, kind and uniqueness before paying for decoding.
func (f *Facade) prepare(ctx context.Context, id string, kind schema.Kind, load func() ([]dataset.Section, error)) (*dataset.Dataset, error) {
	if err := dataset.ValidateID(id); err != nil {
		return nil, err
	}
	if err := dataset.ValidateKind(kind); err != nil {
		return nil, err
	}
	if _, ok := f.store.Snapshot().Lookup(id); ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrExists, id)
	}
	rows, err := load()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dataset.New(id, kind, rows), nil
}

// RemoveDataset removes a dataset and returns its id.
func (f *Facade) RemoveDataset(ctx context.Context, id string) (string, error) {
	err := f.store.Remove(ctx, id)
	metrics.ObserveDatasetOp("remove", err, len(f.store.List()))
	if err != nil {
		f.log.Info("dataset remove rejected", "id", id, "error", err)
		return "", err
	}
	f.log.Info("dataset removed", "id", id)
	return id, nil
}

// ListDatasets describes every dataset, sorted by id.
func (f *Facade) ListDatasets() []dataset.Info {
	return f.store.List()
}

// IsClientError reports whether err was caused by the request rather than by
// the service.
func IsClientError(err error) bool {
	if qerr.KindOf(err) != "" {
		return true
	}
	for _, target := range []error{
		dataset.ErrInvalidID, dataset.ErrExists, dataset.ErrNotFound, dataset.ErrUnsupportedKind,
		loader.ErrInvalidArchive, loader.ErrNoSections,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
