package ast

import (
	"encoding/json"
	"strconv"
	"strings"
)

// String renders a filter tree in its wire form, e.g.
// {"AND":[{"GT":{"courses_avg":90}},{"IS":{"courses_dept":"c*"}}]}.
func String(f Filter) string {
	p := &printer{}
	f.Accept(p)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) VisitMatchAll(*MatchAll) {
	p.sb.WriteString("{}")
}

func (p *printer) VisitComparison(n *Comparison) {
	p.sb.WriteString(`{"` + n.Op.String() + `":{`)
	p.quote(n.Key.String())
	p.sb.WriteString(":")
	p.sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	p.sb.WriteString("}}")
}

func (p *printer) VisitMatch(n *Match) {
	p.sb.WriteString(`{"IS":{`)
	p.quote(n.Key.String())
	p.sb.WriteString(":")
	p.quote(n.Pattern)
	p.sb.WriteString("}}")
}

func (p *printer) VisitNot(n *Not) {
	p.sb.WriteString(`{"NOT":`)
	n.Child.Accept(p)
	p.sb.WriteString("}")
}

func (p *printer) VisitAnd(n *And) {
	p.list("AND", n.Children)
}

func (p *printer) VisitOr(n *Or) {
	p.list("OR", n.Children)
}

func (p *printer) list(op string, children []Filter) {
	p.sb.WriteString(`{"` + op + `":[`)
	for i, c := range children {
		if i > 0 {
			p.sb.WriteString(",")
		}
		c.Accept(p)
	}
	p.sb.WriteString("]}")
}

func (p *printer) quote(s string) {
	b, _ := json.Marshal(s)
	p.sb.Write(b)
}
