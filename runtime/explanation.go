package runtime

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eponymouse/columnal-sub000/decl"
)

// ExplanationKind says what an explanation step did.
type ExplanationKind int

const (
	ExplainValue ExplanationKind = iota
	ExplainMatch
	ExplainCallImplicit
)

var explanationKindNames = [...]string{"value", "match", "call"}

func (k ExplanationKind) String() string { return explanationKindNames[k] }

// ExplanationLocation is a cell (or a whole column when Row is -1) that a
// value was read from.
type ExplanationLocation struct {
	Table  string
	Column string
	Row    int
}

func (l ExplanationLocation) String() string {
	if l.Row < 0 {
		return fmt.Sprintf("%s.%s", l.Table, l.Column)
	}
	return fmt.Sprintf("%s.%s row %d", l.Table, l.Column, l.Row)
}

// Explanation describes how a value came to be: the expression, what it
// produced and the explanations of its parts.
type Explanation struct {
	Expression Expression
	Kind       ExplanationKind
	State      *EvaluateState
	Result     Value
	Locations  []ExplanationLocation

	source   *ValueResult
	once     sync.Once
	children []*Explanation
}

var explanationsBuilt atomic.Int64

// ExplanationsBuilt counts the explanations created by this process.
func ExplanationsBuilt() int64 { return explanationsBuilt.Load() }

func newExplanation(r *ValueResult) *Explanation {
	explanationsBuilt.Add(1)
	return &Explanation{
		Expression: r.Expr,
		Kind:       r.kind,
		State:      r.State,
		Result:     r.Value,
		Locations:  r.locations,
		source:     r,
	}
}

// Children explains the parts that were evaluated to produce this result,
// in evaluation order.
func (e *Explanation) Children() []*Explanation {
	e.once.Do(func() {
		for _, c := range e.source.children {
			e.children = append(e.children, newExplanation(c))
		}
	})
	return e.children
}

// Describe renders the explanation as an indented tree.
func (e *Explanation) Describe() string {
	var sb strings.Builder
	e.describe(&sb, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (e *Explanation) describe(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	text := decl.Save(e.Expression, decl.ToDisplay)
	switch e.Kind {
	case ExplainMatch:
		if b, _ := e.Result.GetBool(); b {
			fmt.Fprintf(sb, "%s matched", text)
		} else {
			fmt.Fprintf(sb, "%s did not match", text)
		}
	case ExplainCallImplicit:
		fmt.Fprintf(sb, "called %s giving %s", text, e.Result)
	default:
		fmt.Fprintf(sb, "%s = %s", text, e.Result)
	}
	for i, l := range e.Locations {
		if i == 0 {
			sb.WriteString(" (from ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(l.String())
		if i == len(e.Locations)-1 {
			sb.WriteString(")")
		}
	}
	sb.WriteString("\n")
	for _, c := range e.Children() {
		c.describe(sb, depth+1)
	}
}
