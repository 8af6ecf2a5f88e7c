package decl

import (
	"strings"
)

// SaveDestination selects how much disambiguation Save writes.
type SaveDestination int

const (
	// ToFile writes namespace keywords and brackets every operator that is
	// nested in another node.  This is the form that round-trips through the
	// parser.
	ToFile SaveDestination = iota
	// ToDisplay omits namespace keywords and only brackets where an
	// operator sits inside another operator, a callee or a field access.
	ToDisplay
)

// Save renders an expression as text.
func Save(e Expression, dest SaveDestination) string {
	p := &printer{dest: dest}
	p.expr(e)
	return p.sb.String()
}

type printer struct {
	sb   strings.Builder
	dest SaveDestination
}

func (p *printer) print(strs ...string) {
	for _, s := range strs {
		p.sb.WriteString(s)
	}
}

// sub prints a child.  tight is set for positions where an operator must be
// bracketed even for display.
func (p *printer) sub(e Expression, tight bool) {
	if IsOperator(e) && (tight || p.dest == ToFile) {
		p.print("(")
		p.expr(e)
		p.print(")")
		return
	}
	p.expr(e)
}

func (p *printer) list(items []Expression, sep string, tight bool) {
	for i, it := range items {
		if i > 0 {
			p.print(sep)
		}
		p.sub(it, tight)
	}
}

func (p *printer) expr(e Expression) {
	switch n := e.(type) {
	case *NumericLiteral:
		p.print(n.Value.String())
		if n.Unit != nil {
			p.print("{", n.Unit.String(), "}")
		}
	case *StringLiteral:
		p.print(QuoteText(n.Value))
	case *BooleanLiteral:
		if n.Value {
			p.print("true")
		} else {
			p.print("false")
		}
	case *TemporalLiteral:
		p.print(TemporalKeyword(n.Kind), "{", n.Content, "}")
	case *UnitLiteral:
		p.print("unit{", n.Unit.String(), "}")
	case *TypeLiteral:
		p.print("type{", n.Type.String(), "}")
	case *IdentExpression:
		if p.dest == ToFile && n.Namespace != NamespaceNone {
			p.print(n.Namespace.Keyword(), `\`)
		}
		p.print(strings.Join(n.Parts, `\`))

	case *AddSubtractExpression:
		for i, o := range n.Operands {
			if i > 0 {
				p.print(" ", n.Ops[i-1].String(), " ")
			}
			p.sub(o, true)
		}
	case *TimesExpression:
		p.list(n.Operands, " * ", true)
	case *DivideExpression:
		p.sub(n.Left, true)
		p.print(" / ")
		p.sub(n.Right, true)
	case *RaiseExpression:
		p.sub(n.Left, true)
		p.print(" ^ ")
		p.sub(n.Right, true)
	case *ComparisonExpression:
		for i, o := range n.Operands {
			if i > 0 {
				p.print(" ", n.Ops[i-1].String(), " ")
			}
			p.sub(o, true)
		}
	case *EqualExpression:
		for i, o := range n.Operands {
			if i > 0 {
				if n.LastIsPattern && i == len(n.Operands)-1 {
					p.print(" =~ ")
				} else {
					p.print(" = ")
				}
			}
			p.sub(o, true)
		}
	case *NotEqualExpression:
		p.sub(n.Left, true)
		p.print(" <> ")
		p.sub(n.Right, true)
	case *AndExpression:
		p.list(n.Operands, " & ", true)
	case *OrExpression:
		p.list(n.Operands, " | ", true)
	case *StringConcatExpression:
		p.list(n.Operands, " ; ", true)
	case *PlusMinusPatternExpression:
		p.sub(n.Left, true)
		p.print(" ± ")
		p.sub(n.Right, true)
	case *HasTypeExpression:
		p.expr(n.Var)
		p.print(" :: ")
		p.sub(n.Type, true)

	case *CallExpression:
		p.sub(n.Function, true)
		p.print("(")
		p.list(n.Args, ", ", false)
		p.print(")")
	case *ArrayExpression:
		p.print("[")
		p.list(n.Items, ", ", false)
		p.print("]")
	case *RecordExpression:
		p.print("(")
		for i, f := range n.Fields {
			if i > 0 {
				p.print(", ")
			}
			p.print(f.Name, ": ")
			p.sub(f.Value, false)
		}
		p.print(")")
	case *TupleExpression:
		p.print("(")
		p.list(n.Items, ", ", false)
		p.print(")")
	case *FieldAccessExpression:
		p.sub(n.Target, true)
		p.print("#", n.Field)
	case *IfThenElseExpression:
		p.print("@if ")
		p.sub(n.Condition, false)
		p.print(" @then ")
		p.sub(n.Then, false)
		p.print(" @else ")
		p.sub(n.Else, false)
		p.print(" @endif")
	case *MatchExpression:
		p.print("@match ")
		p.sub(n.Expression, false)
		for _, c := range n.Clauses {
			for i, pat := range c.Patterns {
				if i == 0 {
					p.print(" @case ")
				} else {
					p.print(" @orcase ")
				}
				p.sub(pat.Pattern, false)
				if pat.Guard != nil {
					p.print(" @given ")
					p.sub(pat.Guard, false)
				}
			}
			p.print(" @then ")
			p.sub(c.Outcome, false)
		}
		p.print(" @endmatch")
	case *DefineExpression:
		p.print("@define ")
		for i, item := range n.Items {
			if i > 0 {
				p.print(", ")
			}
			if item.Type != nil {
				p.expr(item.Type)
			} else {
				p.sub(item.Definition.Pattern, false)
				p.print(" = ")
				p.sub(item.Definition.Value, false)
			}
		}
		p.print(" @then ")
		p.sub(n.Body, false)
		p.print(" @enddefine")
	case *LambdaExpression:
		p.print("@function(")
		p.list(n.Params, ", ", false)
		p.print(") @then ")
		p.sub(n.Body, false)
		p.print(" @endfunction")
	case *ImplicitLambdaArg:
		p.print("?")
	case *MatchAnythingExpression:
		p.print("_")

	case *InvalidOperatorExpression:
		p.print("@invalidops(")
		p.list(n.Items, ", ", false)
		p.print(")")
	case *InvalidIdentExpression:
		p.print("@unfinished ", QuoteText(n.Text))
	}
}
