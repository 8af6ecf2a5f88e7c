package loader

import (
	"fmt"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// QuickFix is a suggested edit: replace the node Target with whatever
// Build returns.
type QuickFix struct {
	Title  string
	Target NodeID
	Build  func() (Expression, error)
}

// Apply builds the replacement and swaps it into root.
func (f QuickFix) Apply(root Expression) (out Expression, err error) {
	defer core.RecoverInternal(&err)
	repl, err := f.Build()
	if err != nil {
		return nil, err
	}
	return decl.Replace(root, f.Target, repl), nil
}

// buildFixes runs each constructor once.  Constructors that fail, by error
// or by panic, are logged and left out; the fixes that remain return the
// replacement built here.
func buildFixes(ctors ...func() (QuickFix, error)) []QuickFix {
	var out []QuickFix
	for _, ctor := range ctors {
		fix, ok := tryFix(ctor)
		if ok {
			out = append(out, fix)
		}
	}
	return out
}

func tryFix(ctor func() (QuickFix, error)) (fix QuickFix, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			core.Warn("quick fix construction failed: %v", r)
			ok = false
		}
	}()
	fix, err := ctor()
	if err != nil {
		core.Warn("quick fix construction failed: %v", err)
		return QuickFix{}, false
	}
	repl, err := fix.Build()
	if err != nil {
		core.Warn("quick fix %q failed: %v", fix.Title, err)
		return QuickFix{}, false
	}
	fix.Build = func() (Expression, error) { return repl, nil }
	return fix, true
}

// unitFix offers to give a numeric literal the unit the surrounding
// operator needs.  The unit is found by unifying a fresh unit variable
// against the target, which must already be a concrete number type.
func unitFix(lit *decl.NumericLiteral, target TypeExp) func() (QuickFix, error) {
	return func() (QuickFix, error) {
		num, ok := types.Prune(target).(types.NumTypeExp)
		if !ok || len(num.Unit.FreeVars()) > 0 {
			return QuickFix{}, fmt.Errorf("no unit to suggest for %s", types.Resolve(target))
		}
		fresh := units.Fresh()
		if err := units.Unify(fresh, num.Unit); err != nil {
			return QuickFix{}, err
		}
		want := fresh.Prune()
		var syntax decl.UnitExpression
		title := fmt.Sprintf("Remove the unit from %s", decl.Save(lit, decl.ToDisplay))
		if !want.IsScalar() {
			var err error
			if syntax, err = decl.UnitSyntaxOf(want); err != nil {
				return QuickFix{}, err
			}
			title = fmt.Sprintf("Change %s to %s{%s}", decl.Save(lit, decl.ToDisplay), lit.Value.String(), want.String())
		} else if lit.Unit == nil {
			return QuickFix{}, fmt.Errorf("literal already has no unit")
		}
		return QuickFix{
			Title:  title,
			Target: lit.ID(),
			Build:  func() (Expression, error) { return lit.WithUnit(syntax), nil },
		}, nil
	}
}

// concatFix offers to turn a + b into a ; b when the operands are text.
func concatFix(e *decl.AddSubtractExpression) func() (QuickFix, error) {
	return func() (QuickFix, error) {
		for _, op := range e.Ops {
			if op != decl.OpAdd {
				return QuickFix{}, fmt.Errorf("cannot join text with -")
			}
		}
		return QuickFix{
			Title:  "Use ; to join text",
			Target: e.ID(),
			Build: func() (Expression, error) {
				return &decl.StringConcatExpression{ExprBase: decl.ExprBase{NodeInfo: e.NodeInfo}, Operands: e.Operands}, nil
			},
		}, nil
	}
}

// bracketFix offers to bracket a chain that mixes operator families, using
// the usual precedence: ^ binds tightest, then * and /, then + - and ;,
// then comparisons, then & and finally |.
func bracketFix(e *decl.InvalidOperatorExpression) func() (QuickFix, error) {
	return func() (QuickFix, error) {
		operands, ops, err := splitChain(e.Items)
		if err != nil {
			return QuickFix{}, err
		}
		return QuickFix{
			Title:  "Add brackets",
			Target: e.ID(),
			Build:  func() (Expression, error) { return bracketChain(operands, ops) },
		}, nil
	}
}

var precedence = map[string]int{
	"^": 6,
	"*": 5, "/": 5,
	"+": 4, "-": 4, ";": 4,
	"<": 3, "<=": 3, ">": 3, ">=": 3, "=": 3, "=~": 3, "<>": 3, "±": 3, "::": 3,
	"&": 2,
	"|": 1,
}

func splitChain(items []Expression) (operands []Expression, ops []string, err error) {
	for i, item := range items {
		if i%2 == 0 {
			operands = append(operands, item)
			continue
		}
		op, ok := item.(*decl.InvalidIdentExpression)
		if !ok {
			return nil, nil, fmt.Errorf("item %d is not an operator", i)
		}
		if _, known := precedence[op.Text]; !known {
			return nil, nil, fmt.Errorf("unknown operator %s", op.Text)
		}
		ops = append(ops, op.Text)
	}
	if len(operands) != len(ops)+1 {
		return nil, nil, fmt.Errorf("operator chain is incomplete")
	}
	return operands, ops, nil
}

// bracketChain splits at the loosest operators and recurses into the
// pieces between them.
func bracketChain(operands []Expression, ops []string) (Expression, error) {
	if len(ops) == 0 {
		return operands[0], nil
	}
	lowest := precedence[ops[0]]
	for _, op := range ops[1:] {
		lowest = min(lowest, precedence[op])
	}
	chain := &parser.ChainedExpr{}
	start := 0
	for i, op := range ops {
		if precedence[op] != lowest {
			continue
		}
		part, err := bracketChain(operands[start:i+1], ops[start:i])
		if err != nil {
			return nil, err
		}
		chain.Children = append(chain.Children, part)
		chain.Operators = append(chain.Operators, op)
		start = i + 1
	}
	last, err := bracketChain(operands[start:], ops[start:])
	if err != nil {
		return nil, err
	}
	chain.Children = append(chain.Children, last)
	chain.Unchain()
	if _, bad := chain.UnchainedExpr.(*decl.InvalidOperatorExpression); bad || chain.UnchainedExpr == nil {
		return nil, fmt.Errorf("operators %v cannot be bracketed by precedence", chain.Operators)
	}
	return chain.UnchainedExpr, nil
}
