package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/razeghi71/insight/logger"
)

// Store is the dataset catalog. It is safe for concurrent use.
type Store struct {
	backend Backend

	writeMu sync.Mutex // serializes Add/Remove, held across backend calls
	mu      sync.RWMutex
	current map[string]*Dataset
}

// NewStore creates an empty catalog. backend may be nil for a purely
// in-memory catalog.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, current: map[string]*Dataset{}}
}

// Load replaces the catalog with everything the backend holds. Stored
// datasets whose id or kind no longer validates are logged and skipped.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	all, err := s.backend.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}
	next := make(map[string]*Dataset, len(all))
	for _, ds := range all {
		err := ValidateID(ds.ID)
		if err == nil {
			err = ValidateKind(ds.Kind)
		}
		if err != nil {
			logger.Get().Warn("skipping stored dataset", "id", ds.ID, "kind", ds.Kind, "error", err)
			continue
		}
		next[ds.ID] = ds
	}
	s.publish(next)
	return nil
}

// Add validates and publishes a dataset. The dataset's rows must not be
// modified afterwards.
func (s *Store) Add(ctx context.Context, ds *Dataset) error {
	if err := ValidateID(ds.ID); err != nil {
		return err
	}
	if err := ValidateKind(ds.Kind); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.snapshotMap()
	if _, ok := cur[ds.ID]; ok {
		return fmt.Errorf("%w: %q", ErrExists, ds.ID)
	}
	ds.NumRows = len(ds.Rows)
	if s.backend != nil {
		if err := s.backend.Save(ctx, ds); err != nil {
			return fmt.Errorf("save dataset %q: %w", ds.ID, err)
		}
	}

	next := make(map[string]*Dataset, len(cur)+1)
	for id, d := range cur {
		next[id] = d
	}
	next[ds.ID] = ds
	s.publish(next)
	return nil
}

// Remove deletes a dataset from the catalog.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.snapshotMap()
	if _, ok := cur[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if s.backend != nil {
		if err := s.backend.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete dataset %q: %w", id, err)
		}
	}

	next := make(map[string]*Dataset, len(cur))
	for k, d := range cur {
		if k != id {
			next[k] = d
		}
	}
	s.publish(next)
	return nil
}

// List returns every dataset's info, sorted by id.
func (s *Store) List() []Info {
	return s.Snapshot().List()
}

// IDs returns every dataset id, sorted.
func (s *Store) IDs() []string {
	infos := s.List()
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}

// Snapshot returns a read-only view of the catalog as it is now.
func (s *Store) Snapshot() *Snapshot {
	return &Snapshot{datasets: s.snapshotMap()}
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) snapshotMap() map[string]*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) publish(next map[string]*Dataset) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

// Snapshot is an immutable view of the catalog.
type Snapshot struct {
	datasets map[string]*Dataset
}

// Lookup returns the info of a dataset.
func (s *Snapshot) Lookup(id string) (Info, bool) {
	ds, ok := s.datasets[id]
	if !ok {
		return Info{}, false
	}
	return ds.Info, true
}

// Rows returns the rows of a dataset. The slice is shared and must not be
// modified.
func (s *Snapshot) Rows(id string) ([]Section, bool) {
	ds, ok := s.datasets[id]
	if !ok {
		return nil, false
	}
	return ds.Rows, true
}

// List returns every dataset's info, sorted by id.
func (s *Snapshot) List() []Info {
	out := make([]Info, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, ds.Info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
