package ast

import (
	"regexp"
	"strings"

	"github.com/razeghi71/insight/schema"
)

// Key is a resolved qualified key: a dataset id plus a known field.
type Key struct {
	Dataset string
	Field   schema.Field
}

// String returns the wire form of the key, e.g. "courses_avg".
func (k Key) String() string {
	return schema.JoinKey(k.Dataset, k.Field)
}

// Type returns the type of the referenced field.
func (k Key) Type() schema.FieldType {
	return k.Field.Type()
}

// Filter is a node of a validated filter tree. The set of node types is
// closed: every implementation dispatches to one Visitor method.
type Filter interface {
	Accept(v Visitor)
	filterNode()
}

// Visitor has one method per filter node type. Adding a node type means
// adding a method here, so every visitor must handle it to compile.
type Visitor interface {
	VisitMatchAll(n *MatchAll)
	VisitComparison(n *Comparison)
	VisitMatch(n *Match)
	VisitNot(n *Not)
	VisitAnd(n *And)
	VisitOr(n *Or)
}

// MatchAll is the empty filter; it selects every row.
type MatchAll struct{}

func (n *MatchAll) Accept(v Visitor) { v.VisitMatchAll(n) }
func (n *MatchAll) filterNode()      {}

// CmpOp is a numeric comparison operator.
type CmpOp int

const (
	CmpLT CmpOp = iota
	CmpGT
	CmpEQ
)

func (op CmpOp) String() string {
	switch op {
	case CmpLT:
		return "LT"
	case CmpGT:
		return "GT"
	case CmpEQ:
		return "EQ"
	default:
		return "?"
	}
}

// Comparison compares a numeric field against a constant.
type Comparison struct {
	Op    CmpOp
	Key   Key
	Value float64
}

func (n *Comparison) Accept(v Visitor) { v.VisitComparison(n) }
func (n *Comparison) filterNode()      {}

// MatchMode says where a pattern's wildcards sit.
type MatchMode int

const (
	MatchExact    MatchMode = iota // abc
	MatchPrefix                    // abc*
	MatchSuffix                    // *abc
	MatchContains                  // *abc*
)

// Match compares a textual field against a wildcard pattern.
type Match struct {
	Key     Key
	Pattern string
	Mode    MatchMode
	Literal string // Pattern without its wildcards
}

func (n *Match) Accept(v Visitor) { v.VisitMatch(n) }
func (n *Match) filterNode()      {}

var patternRe = regexp.MustCompile(`^\*?[^*]*\*?$`)

// ValidPattern reports whether p has wildcards only at its ends.
func ValidPattern(p string) bool {
	return patternRe.MatchString(p)
}

// NewMatch builds a Match node, splitting the pattern into mode and literal.
// The pattern must satisfy ValidPattern.
func NewMatch(key Key, pattern string) *Match {
	lit := pattern
	lead := strings.HasPrefix(lit, "*")
	if lead {
		lit = lit[1:]
	}
	trail := strings.HasSuffix(lit, "*")
	if trail {
		lit = lit[:len(lit)-1]
	}

	mode := MatchExact
	switch {
	case lead && trail:
		mode = MatchContains
	case lead:
		mode = MatchSuffix
	case trail:
		mode = MatchPrefix
	}
	return &Match{Key: key, Pattern: pattern, Mode: mode, Literal: lit}
}

// Not negates its child.
type Not struct {
	Child Filter
}

func (n *Not) Accept(v Visitor) { v.VisitNot(n) }
func (n *Not) filterNode()      {}

// And holds when every child holds. Children is never empty.
type And struct {
	Children []Filter
}

func (n *And) Accept(v Visitor) { v.VisitAnd(n) }
func (n *And) filterNode()      {}

// Or holds when any child holds. Children is never empty.
type Or struct {
	Children []Filter
}

func (n *Or) Accept(v Visitor) { v.VisitOr(n) }
func (n *Or) filterNode()      {}

// Query is a validated query bound to a single dataset.
type Query struct {
	Dataset string
	Kind    schema.Kind
	Filter  Filter
	Columns []Key
	Order   *Key // nil when the query has no order; always one of Columns
}
