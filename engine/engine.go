package engine

import (
	"sort"

	"github.com/razeghi71/insight/ast"
	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/qerr"
	"github.com/razeghi71/insight/table"
)

// DefaultResultLimit is the result-set ceiling used when none is configured.
const DefaultResultLimit = 5000

// Options tunes query execution.
type Options struct {
	// Limit is the largest number of rows a query may return. Queries that
	// match more are rejected with qerr.ResultTooLarge. Zero or less disables
	// the check.
	Limit int
}

// DefaultOptions returns the options used by the facade when unconfigured.
func DefaultOptions() Options {
	return Options{Limit: DefaultResultLimit}
}

// Run executes a validated query over a dataset's rows: filter, bound,
// project, then order. rows is only read.
func Run(rows []dataset.Section, q *ast.Query, opts Options) (*table.Table, error) {
	kept := execFilter(rows, Compile(q.Filter))

	if opts.Limit > 0 && len(kept) > opts.Limit {
		return nil, qerr.Newf(qerr.ResultTooLarge,
			"query matched %d rows, more than the limit of %d; narrow the filter", len(kept), opts.Limit)
	}

	result := execSelect(kept, q.Columns)
	if q.Order != nil {
		execSort(result, q.Order.String())
	}
	return result, nil
}

// execFilter keeps matching rows in their original order.
func execFilter(rows []dataset.Section, pred Predicate) []*dataset.Section {
	var kept []*dataset.Section
	for i := range rows {
		if pred(&rows[i]) {
			kept = append(kept, &rows[i])
		}
	}
	return kept
}

func execSelect(rows []*dataset.Section, cols []ast.Key) *table.Table {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.String()
	}

	result := table.NewTable(names)
	result.Rows = make([]table.Row, 0, len(rows))
	for _, row := range rows {
		vals := make([]table.Value, len(cols))
		for i, c := range cols {
			vals[i] = row.Value(c.Field)
		}
		result.AddRow(vals)
	}
	return result
}

// execSort sorts ascending by one column, keeping the relative order of
// rows with equal keys.
func execSort(t *table.Table, col string) {
	idx := t.ColIndex(col)
	if idx < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return table.Compare(t.Rows[i].Values[idx], t.Rows[j].Values[idx]) < 0
	})
}
