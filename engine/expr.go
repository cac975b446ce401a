package engine

import (
	"strings"

	"github.com/razeghi71/insight/ast"
	"github.com/razeghi71/insight/dataset"
)

// Predicate reports whether a row is selected by a filter.
type Predicate func(row *dataset.Section) bool

// Compile turns a validated filter tree into a predicate. Field lookups and
// pattern analysis happen once here, not per row.
func Compile(f ast.Filter) Predicate {
	c := &compiler{}
	f.Accept(c)
	return c.pred
}

// Matches evaluates a filter tree against a single row.
func Matches(row *dataset.Section, f ast.Filter) bool {
	return Compile(f)(row)
}

// compiler builds predicates bottom-up; each Visit method leaves the
// predicate for its node in pred.
type compiler struct {
	pred Predicate
}

func (c *compiler) compile(f ast.Filter) Predicate {
	sub := &compiler{}
	f.Accept(sub)
	return sub.pred
}

func (c *compiler) VisitMatchAll(*ast.MatchAll) {
	c.pred = func(*dataset.Section) bool { return true }
}

func (c *compiler) VisitComparison(n *ast.Comparison) {
	field, v := n.Key.Field, n.Value
	switch n.Op {
	case ast.CmpLT:
		c.pred = func(r *dataset.Section) bool { return r.Number(field) < v }
	case ast.CmpGT:
		c.pred = func(r *dataset.Section) bool { return r.Number(field) > v }
	default:
		c.pred = func(r *dataset.Section) bool { return r.Number(field) == v }
	}
}

func (c *compiler) VisitMatch(n *ast.Match) {
	field, lit := n.Key.Field, n.Literal
	switch n.Mode {
	case ast.MatchPrefix:
		c.pred = func(r *dataset.Section) bool { return strings.HasPrefix(r.Text(field), lit) }
	case ast.MatchSuffix:
		c.pred = func(r *dataset.Section) bool { return strings.HasSuffix(r.Text(field), lit) }
	case ast.MatchContains:
		c.pred = func(r *dataset.Section) bool { return strings.Contains(r.Text(field), lit) }
	default:
		c.pred = func(r *dataset.Section) bool { return r.Text(field) == lit }
	}
}

func (c *compiler) VisitNot(n *ast.Not) {
	inner := c.compile(n.Child)
	c.pred = func(r *dataset.Section) bool { return !inner(r) }
}

func (c *compiler) VisitAnd(n *ast.And) {
	children := c.compileAll(n.Children)
	c.pred = func(r *dataset.Section) bool {
		for _, p := range children {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func (c *compiler) VisitOr(n *ast.Or) {
	children := c.compileAll(n.Children)
	c.pred = func(r *dataset.Section) bool {
		for _, p := range children {
			if p(r) {
				return true
			}
		}
		return false
	}
}

func (c *compiler) compileAll(fs []ast.Filter) []Predicate {
	out := make([]Predicate, len(fs))
	for i, f := range fs {
		out[i] = c.compile(f)
	}
	return out
}
