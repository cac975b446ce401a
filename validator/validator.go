// Package validator checks a decoded query document against the query
// grammar and the dataset catalog, producing a bound ast.Query.
//
// Checks run in three phases: document shape, column/order binding, then
// the filter tree. The first violation found is returned as a *qerr.Error.
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"

	"github.com/razeghi71/insight/ast"
	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/qerr"
	"github.com/razeghi71/insight/schema"
)

// Document keys.
const (
	KeyFilter  = "filter"
	KeyOptions = "options"
	KeyColumns = "columns"
	KeyOrder   = "order"
)

// maxDepth matches the nesting limit of encoding/json, so it only trips on
// documents built in Go (including cyclic ones).
const maxDepth = 10000

// Catalog resolves dataset ids.
type Catalog interface {
	Lookup(id string) (dataset.Info, bool)
}

// Parse decodes a JSON query document and validates it.
func Parse(data []byte, catalog Catalog) (*ast.Query, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, qerr.Newf(qerr.MalformedDocument, "query is not valid JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, qerr.New(qerr.MalformedDocument, "unexpected data after query document")
	}
	return Validate(doc, catalog)
}

// Validate checks a decoded query document. Objects must be map[string]any
// and arrays []any, as produced by encoding/json.
func Validate(doc any, catalog Catalog) (*ast.Query, error) {
	c := &checker{catalog: catalog}

	filter, options, err := c.checkShape(doc)
	if err != nil {
		return nil, err
	}

	q, err := c.checkOptions(options)
	if err != nil {
		return nil, err
	}

	q.Filter, err = c.checkWhere(filter)
	if err != nil {
		return nil, err
	}
	return q, nil
}

type checker struct {
	catalog Catalog
	dataset string
	schema  *schema.Schema
}

func (c *checker) checkShape(doc any) (filter, options map[string]any, err error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, nil, qerr.New(qerr.MalformedDocument, "query must be an object")
	}
	if _, ok := root[KeyFilter]; !ok {
		return nil, nil, qerr.New(qerr.MalformedDocument, "missing filter")
	}
	if _, ok := root[KeyOptions]; !ok {
		return nil, nil, qerr.New(qerr.MalformedDocument, "missing options")
	}
	for k := range root {
		if k != KeyFilter && k != KeyOptions {
			return nil, nil, qerr.WithKey(qerr.MalformedDocument, k, "unexpected top-level key")
		}
	}

	filter, ok = root[KeyFilter].(map[string]any)
	if !ok {
		return nil, nil, qerr.New(qerr.MalformedDocument, "filter must be an object")
	}
	options, ok = root[KeyOptions].(map[string]any)
	if !ok {
		return nil, nil, qerr.New(qerr.MalformedDocument, "options must be an object")
	}

	if _, ok := options[KeyColumns]; !ok {
		return nil, nil, qerr.New(qerr.MalformedDocument, "missing options.columns")
	}
	for k := range options {
		if k != KeyColumns && k != KeyOrder {
			return nil, nil, qerr.WithKey(qerr.MalformedDocument, k, "unexpected key in options")
		}
	}
	return filter, options, nil
}

func (c *checker) checkOptions(options map[string]any) (*ast.Query, error) {
	cols, ok := options[KeyColumns].([]any)
	if !ok {
		return nil, qerr.New(qerr.InvalidColumns, "columns must be an array")
	}
	if len(cols) == 0 {
		return nil, qerr.New(qerr.InvalidColumns, "columns must not be empty")
	}

	// The first column names the dataset every other key must use.
	first, ok := cols[0].(string)
	if !ok {
		return nil, qerr.New(qerr.InvalidColumns, "columns must hold strings")
	}
	id, _, ok := schema.SplitKey(first)
	if !ok {
		return nil, qerr.WithKey(qerr.InvalidColumns, first, "malformed key in columns")
	}
	info, ok := c.catalog.Lookup(id)
	if !ok {
		return nil, qerr.Newf(qerr.UnknownDataset, "dataset %q has not been added", id)
	}
	sch, ok := schema.ForKind(info.Kind)
	if !ok {
		return nil, qerr.Newf(qerr.UnknownDataset, "dataset %q has unsupported kind %q", id, info.Kind)
	}
	c.dataset = id
	c.schema = sch

	q := &ast.Query{Dataset: id, Kind: info.Kind, Columns: make([]ast.Key, 0, len(cols))}
	for _, raw := range cols {
		k, err := c.key(raw, qerr.InvalidColumns, "column")
		if err != nil {
			return nil, err
		}
		q.Columns = append(q.Columns, k)
	}

	rawOrder, ok := options[KeyOrder]
	if !ok {
		return q, nil
	}
	order, err := c.key(rawOrder, qerr.InvalidOrder, "order")
	if err != nil {
		return nil, err
	}
	for _, col := range q.Columns {
		if col == order {
			q.Order = &order
			return q, nil
		}
	}
	return nil, qerr.WithKey(qerr.InvalidOrder, order.String(), "order key is not one of columns")
}

// key resolves a qualified key bound to the query's dataset. malformed is
// the kind reported for non-string, unparsable or unknown-field keys.
func (c *checker) key(raw any, malformed qerr.Kind, what string) (ast.Key, error) {
	s, ok := raw.(string)
	if !ok {
		return ast.Key{}, qerr.Newf(malformed, "%s key must be a string", what)
	}
	id, field, ok := schema.SplitKey(s)
	if !ok {
		return ast.Key{}, qerr.WithKey(malformed, s, "malformed "+what+" key")
	}
	if id != c.dataset {
		return ast.Key{}, qerr.WithKey(qerr.CrossDatasetReference, s,
			"query is on dataset "+c.dataset+" but "+what+" references dataset "+id)
	}
	f, ok := c.schema.Lookup(field)
	if !ok {
		return ast.Key{}, qerr.WithKey(malformed, s, "unknown field "+field)
	}
	return ast.Key{Dataset: id, Field: f}, nil
}

func (c *checker) checkWhere(filter map[string]any) (ast.Filter, error) {
	if len(filter) == 0 {
		return &ast.MatchAll{}, nil
	}
	return c.checkFilter(filter, 0)
}

func (c *checker) checkFilter(v any, depth int) (ast.Filter, error) {
	if depth > maxDepth {
		return nil, qerr.New(qerr.InvalidFilterShape, "filter is nested too deeply")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, qerr.New(qerr.InvalidFilterShape, "filter must be an object")
	}
	if len(m) != 1 {
		return nil, qerr.Newf(qerr.InvalidFilterShape, "filter must have exactly one key, got %d", len(m))
	}

	var op string
	var arg any
	for op, arg = range m {
	}

	switch op {
	case "LT":
		return c.checkComparison(ast.CmpLT, arg)
	case "GT":
		return c.checkComparison(ast.CmpGT, arg)
	case "EQ":
		return c.checkComparison(ast.CmpEQ, arg)
	case "IS":
		return c.checkMatch(arg)
	case "NOT":
		child, err := c.checkFilter(arg, depth+1)
		if err != nil {
			return nil, err
		}
		return &ast.Not{Child: child}, nil
	case "AND", "OR":
		children, err := c.checkLogical(op, arg, depth)
		if err != nil {
			return nil, err
		}
		if op == "AND" {
			return &ast.And{Children: children}, nil
		}
		return &ast.Or{Children: children}, nil
	default:
		return nil, qerr.WithKey(qerr.InvalidFilterShape, op, "unknown filter")
	}
}

func (c *checker) checkLogical(op string, arg any, depth int) ([]ast.Filter, error) {
	arr, ok := arg.([]any)
	if !ok {
		return nil, qerr.WithKey(qerr.InvalidFilterShape, op, "value must be an array")
	}
	if len(arr) == 0 {
		return nil, qerr.WithKey(qerr.EmptyLogicalArray, op, "array must not be empty")
	}
	children := make([]ast.Filter, len(arr))
	for i, el := range arr {
		child, err := c.checkFilter(el, depth+1)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return children, nil
}

func (c *checker) checkComparison(op ast.CmpOp, arg any) (ast.Filter, error) {
	raw, val, err := singleEntry(op.String(), arg)
	if err != nil {
		return nil, err
	}
	k, err := c.key(raw, qerr.InvalidFilterShape, op.String())
	if err != nil {
		return nil, err
	}
	if k.Type() != schema.TypeNumeric {
		return nil, qerr.WithKey(qerr.TypeMismatch, raw, op.String()+" requires a numeric field")
	}
	n, ok := toFloat64(val)
	if !ok {
		return nil, qerr.WithKey(qerr.TypeMismatch, raw, op.String()+" value must be a number")
	}
	return &ast.Comparison{Op: op, Key: k, Value: n}, nil
}

func (c *checker) checkMatch(arg any) (ast.Filter, error) {
	raw, val, err := singleEntry("IS", arg)
	if err != nil {
		return nil, err
	}
	k, err := c.key(raw, qerr.InvalidFilterShape, "IS")
	if err != nil {
		return nil, err
	}
	if k.Type() != schema.TypeTextual {
		return nil, qerr.WithKey(qerr.TypeMismatch, raw, "IS requires a textual field")
	}
	pattern, ok := val.(string)
	if !ok {
		return nil, qerr.WithKey(qerr.TypeMismatch, raw, "IS value must be a string")
	}
	if !ast.ValidPattern(pattern) {
		return nil, qerr.WithKey(qerr.InvalidWildcard, raw, "wildcard * is only allowed at the start or end of "+pattern)
	}
	return ast.NewMatch(k, pattern), nil
}

// singleEntry unpacks the {"<key>": <value>} argument of a comparison.
func singleEntry(op string, arg any) (string, any, error) {
	m, ok := arg.(map[string]any)
	if !ok {
		return "", nil, qerr.WithKey(qerr.InvalidFilterShape, op, "value must be an object")
	}
	if len(m) != 1 {
		return "", nil, qerr.WithKey(qerr.InvalidFilterShape, op, "value must have exactly one key")
	}
	var key string
	var val any
	for key, val = range m {
	}
	return key, val, nil
}

// toFloat64 accepts the numeric types encoding/json and Go callers produce.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
