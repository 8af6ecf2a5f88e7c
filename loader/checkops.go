package loader

import (
	"fmt"
	"slices"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// Operators share two templates.  withImplicitLambda turns a node with ?
// among its direct operands into a one argument function.  unifyOperands
// unifies every operand against one target type and reports each operand
// that does not fit, offering fixes through a per-operator hook.

func isImplicitArg(e Expression) bool {
	_, ok := e.(*decl.ImplicitLambdaArg)
	return ok
}

// withImplicitLambda runs check directly, or, if an operand is ?, in a
// state where ? is bound to a fresh argument type.  In the latter case the
// node's type is a function from that argument to check's result.
func (c *Checker) withImplicitLambda(e Expression, operands []Expression, state *TypeState, check func(*TypeState) *CheckedExp) *CheckedExp {
	if !slices.ContainsFunc(operands, isImplicitArg) {
		return check(state)
	}
	arg := state.FreshTypeVar()
	res := check(state.AddImplicitLambda(arg))
	if res == nil {
		return nil
	}
	c.ann.MarkImplicitLambda(e.ID(), arg)
	return c.ok(types.Function(res.Type, arg), state)
}

// operandHook suggests fixes for operand i that did not unify with target.
type operandHook func(i int, operand Expression, target TypeExp) []func() (QuickFix, error)

// checkOperands checks each operand, continuing past failures so every
// problem is reported.  It returns nil if any operand failed.
func (c *Checker) checkOperands(operands []Expression, state *TypeState, loc LocationInfo) []TypeExp {
	out := make([]TypeExp, len(operands))
	failed := false
	for i, o := range operands {
		res := c.CheckNode(o, state, KindExpression, loc)
		if res == nil {
			failed = true
			continue
		}
		out[i] = res.Type
	}
	if failed {
		return nil
	}
	return out
}

// unifyOperands unifies target with every operand type, left to right.
func (c *Checker) unifyOperands(operands []Expression, opTypes []TypeExp, target TypeExp, hook operandHook) (TypeExp, bool) {
	all := append([]TypeExp{target}, opTypes...)
	result, errs := types.UnifyAll(all...)
	for _, ie := range errs {
		i := ie.Index - 1
		c.report(operands[i], ie.Err.Message)
		if hook != nil {
			c.offerFixes(operands[i], hook(i, operands[i], result)...)
		}
	}
	return result, len(errs) == 0
}

// unitHook offers to change the unit of literals in unit constrained
// positions: the failing operand itself, and the first operand when it was
// the literal that set the target.
func (c *Checker) unitHook(operands []Expression, opTypes []TypeExp) operandHook {
	return func(i int, operand Expression, target TypeExp) []func() (QuickFix, error) {
		var out []func() (QuickFix, error)
		if lit, ok := operand.(*decl.NumericLiteral); ok && c.constrained[lit.ID()] {
			out = append(out, unitFix(lit, target))
		}
		if first, ok := operands[0].(*decl.NumericLiteral); ok && i > 0 && c.constrained[first.ID()] {
			if _, isNum := types.Prune(opTypes[i]).(types.NumTypeExp); isNum {
				out = append(out, unitFix(first, opTypes[i]))
			}
		}
		return out
	}
}

func (c *Checker) freshNumber() (TypeExp, units.UnitExp) {
	u := units.Fresh()
	return types.Number(u), u
}

// --- arithmetic ---

func (c *Checker) checkAddSubtract(n *decl.AddSubtractExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(n.Operands, st, UnitConstrained)
		if opTypes == nil {
			return nil
		}
		target, _ := c.freshNumber()
		offeredConcat := false
		unitFixes := c.unitHook(n.Operands, opTypes)
		result, ok := c.unifyOperands(n.Operands, opTypes, target, func(i int, operand Expression, target TypeExp) []func() (QuickFix, error) {
			fixes := unitFixes(i, operand, target)
			if !offeredConcat && slices.ContainsFunc(opTypes, isText) {
				offeredConcat = true
				fixes = append(fixes, concatFix(n))
			}
			return fixes
		})
		if !ok {
			return nil
		}
		return c.ok(result, state)
	})
}

func isText(t TypeExp) bool {
	p, ok := types.Prune(t).(types.PrimitiveTypeExp)
	return ok && p.Kind == types.KindText
}

// requireNumber unifies an operand with a number of fresh unit and returns
// the unit.
func (c *Checker) requireNumber(operand Expression, t TypeExp) (units.UnitExp, bool) {
	num, u := c.freshNumber()
	if _, err := types.Unify(t, num); err != nil {
		c.report(operand, fmt.Sprintf("expected a number, found %s", types.Resolve(t)))
		return units.UnitExp{}, false
	}
	return u, true
}

func (c *Checker) checkTimes(n *decl.TimesExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(n.Operands, st, UnitModifying)
		if opTypes == nil {
			return nil
		}
		product, ok := units.Scalar(), true
		for i, t := range opTypes {
			u, fine := c.requireNumber(n.Operands[i], t)
			ok = ok && fine
			product = product.Times(u)
		}
		if !ok {
			return nil
		}
		return c.ok(types.Number(product), state)
	})
}

func (c *Checker) checkDivide(n *decl.DivideExpression, state *TypeState) *CheckedExp {
	operands := []Expression{n.Left, n.Right}
	return c.withImplicitLambda(n, operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(operands, st, UnitModifying)
		if opTypes == nil {
			return nil
		}
		top, okTop := c.requireNumber(n.Left, opTypes[0])
		bottom, okBottom := c.requireNumber(n.Right, opTypes[1])
		if !okTop || !okBottom {
			return nil
		}
		return c.ok(types.Number(top.Divide(bottom)), state)
	})
}

// checkRaise allows units on the base only when the exponent is a whole
// number literal or written as 1/n.
func (c *Checker) checkRaise(n *decl.RaiseExpression, state *TypeState) *CheckedExp {
	operands := []Expression{n.Left, n.Right}
	return c.withImplicitLambda(n, operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(operands, st, UnitModifying)
		if opTypes == nil {
			return nil
		}
		base, ok := c.requireNumber(n.Left, opTypes[0])
		if !ok {
			return nil
		}
		if power, ok := IntegerLiteral(n.Right); ok {
			return c.ok(types.Number(base.Raise(power)), state)
		}
		if root, ok := RootLiteral(n.Right); ok {
			result := units.Fresh()
			if err := units.Unify(base, result.Raise(root)); err != nil {
				return c.errorf(n, "cannot take root %d of unit %s", root, base.String())
			}
			return c.ok(types.Number(result), state)
		}
		if _, err := types.Unify(opTypes[1], types.PlainNumber()); err != nil {
			return c.errorf(n.Right, "the power must be a number without units, found %s", types.Resolve(opTypes[1]))
		}
		if err := units.Unify(base, units.Scalar()); err != nil {
			return c.errorf(n, "a number with units can only be raised to a whole number or to 1/n, not %s", decl.Save(n.Right, decl.ToDisplay))
		}
		return c.ok(types.PlainNumber(), state)
	})
}

// IntegerLiteral reports the value of a whole number literal without units,
// including a negative one.
func IntegerLiteral(e Expression) (int, bool) {
	lit, ok := e.(*decl.NumericLiteral)
	if !ok || lit.Unit != nil || !lit.Value.IsInteger() || lit.Value.Abs().IntPart() > 1<<20 {
		return 0, false
	}
	return int(lit.Value.IntPart()), true
}

// RootLiteral recognises 1/n for a positive whole n.
func RootLiteral(e Expression) (int, bool) {
	div, ok := e.(*decl.DivideExpression)
	if !ok {
		return 0, false
	}
	one, ok := IntegerLiteral(div.Left)
	if !ok || one != 1 {
		return 0, false
	}
	n, ok := IntegerLiteral(div.Right)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

// --- comparison and logic ---

func (c *Checker) checkComparison(n *decl.ComparisonExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(n.Operands, st, UnitConstrained)
		if opTypes == nil {
			return nil
		}
		target := st.FreshTypeVar(types.Comparable)
		if _, ok := c.unifyOperands(n.Operands, opTypes, target, c.unitHook(n.Operands, opTypes)); !ok {
			return nil
		}
		return c.ok(types.BoolType, state)
	})
}

// checkEqual handles a = b = c, and a =~ p where the last operand is a
// pattern whose bindings are passed on.
func (c *Checker) checkEqual(n *decl.EqualExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
		values := n.Operands
		var pattern Expression
		if n.LastIsPattern {
			values, pattern = n.Operands[:len(n.Operands)-1], n.Operands[len(n.Operands)-1]
		}
		opTypes := c.checkOperands(values, st, UnitConstrained)
		out := state
		if pattern != nil {
			pr := c.CheckNode(pattern, st, KindPattern, UnitConstrained)
			if pr == nil || opTypes == nil {
				return nil
			}
			opTypes = append(opTypes, pr.Type)
			if st == state {
				out = pr.State
			}
		} else if opTypes == nil {
			return nil
		}
		target := st.FreshTypeVar(types.Equatable)
		if _, ok := c.unifyOperands(n.Operands, opTypes, target, c.unitHook(n.Operands, opTypes)); !ok {
			return nil
		}
		return c.ok(types.BoolType, out)
	})
}

func (c *Checker) checkNotEqual(n *decl.NotEqualExpression, state *TypeState) *CheckedExp {
	operands := []Expression{n.Left, n.Right}
	return c.withImplicitLambda(n, operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(operands, st, UnitConstrained)
		if opTypes == nil {
			return nil
		}
		target := st.FreshTypeVar(types.Equatable)
		if _, ok := c.unifyOperands(operands, opTypes, target, c.unitHook(operands, opTypes)); !ok {
			return nil
		}
		return c.ok(types.BoolType, state)
	})
}

// checkAnd threads the state through the operands, so a =~ binding on the
// left is visible on the right.
func (c *Checker) checkAnd(n *decl.AndExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
		cur, failed := st, false
		for _, o := range n.Operands {
			res := c.CheckNode(o, cur, KindExpression, UnitDefault)
			if res == nil {
				failed = true
				continue
			}
			if _, err := types.Unify(res.Type, types.BoolType); err != nil {
				c.report(o, fmt.Sprintf("expected a Boolean, found %s", types.Resolve(res.Type)))
				failed = true
				continue
			}
			cur = res.State
		}
		if failed {
			return nil
		}
		if st != state {
			// Bindings made under an implicit lambda stay inside it.
			return c.ok(types.BoolType, state)
		}
		return c.ok(types.BoolType, cur)
	})
}

func (c *Checker) checkOr(n *decl.OrExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
		opTypes := c.checkOperands(n.Operands, st, UnitDefault)
		if opTypes == nil {
			return nil
		}
		if _, ok := c.unifyOperands(n.Operands, opTypes, types.BoolType, nil); !ok {
			return nil
		}
		return c.ok(types.BoolType, state)
	})
}

// --- text ---

const adjacentBindersMsg = "cannot match two variables/wildcards next to each other in a text pattern"

func (c *Checker) checkConcat(n *decl.StringConcatExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	if kind != KindPattern {
		return c.withImplicitLambda(n, n.Operands, state, func(st *TypeState) *CheckedExp {
			opTypes := c.checkOperands(n.Operands, st, UnitDefault)
			if opTypes == nil {
				return nil
			}
			if _, ok := c.unifyOperands(n.Operands, opTypes, types.TextType, nil); !ok {
				return nil
			}
			return c.ok(types.TextType, state)
		})
	}

	cur, failed := state, false
	opTypes := make([]TypeExp, 0, len(n.Operands))
	for i, o := range n.Operands {
		res := c.CheckNode(o, cur, KindPattern, UnitDefault)
		if res == nil {
			failed = true
			continue
		}
		if i > 0 && c.isBinder(n.Operands[i-1]) && c.isBinder(o) {
			c.report(o, adjacentBindersMsg)
			failed = true
		}
		opTypes = append(opTypes, res.Type)
		cur = res.State
	}
	if failed {
		return nil
	}
	if _, ok := c.unifyOperands(n.Operands, opTypes, types.TextType, nil); !ok {
		return nil
	}
	return c.ok(types.TextType, cur)
}

// isBinder reports whether a checked pattern node matches any text: a
// wildcard or a newly declared variable.
func (c *Checker) isBinder(e Expression) bool {
	switch n := e.(type) {
	case *decl.MatchAnythingExpression:
		return true
	case *decl.IdentExpression:
		return c.ann.IsDeclaration(n.ID())
	}
	return false
}

func (c *Checker) checkPlusMinus(n *decl.PlusMinusPatternExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	if kind != KindPattern {
		return c.errorf(n, "± can only be used in a pattern")
	}
	operands := []Expression{n.Left, n.Right}
	opTypes := c.checkOperands(operands, state, UnitConstrained)
	if opTypes == nil {
		return nil
	}
	target, _ := c.freshNumber()
	result, ok := c.unifyOperands(operands, opTypes, target, c.unitHook(operands, opTypes))
	if !ok {
		return nil
	}
	return c.ok(result, state)
}

// --- error recovery nodes ---

func (c *Checker) checkInvalidOperators(n *decl.InvalidOperatorExpression, state *TypeState) *CheckedExp {
	var ops []string
	for i, item := range n.Items {
		if i%2 == 1 {
			if op, ok := item.(*decl.InvalidIdentExpression); ok {
				ops = append(ops, op.Text)
			}
			continue
		}
		c.CheckNode(item, state, KindExpression, UnitDefault)
	}
	c.report(n, fmt.Sprintf("operators %v cannot be mixed without brackets", ops))
	c.offerFixes(n, bracketFix(n))
	return nil
}
